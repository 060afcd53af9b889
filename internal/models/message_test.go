package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMessage_UnmarshalFaultingInt(t *testing.T) {
	var msg ValueMessage
	err := json.Unmarshal([]byte(`{"value": 1, "timestamp": 1706284800}`), &msg)
	require.NoError(t, err)
	assert.Equal(t, FaultFaulting, msg.Value)
	assert.Equal(t, int64(1706284800), msg.Timestamp)
}

func TestValueMessage_UnmarshalFaultingFloat(t *testing.T) {
	var msg ValueMessage
	err := json.Unmarshal([]byte(`{"value": 1.0, "timestamp": 1706284800}`), &msg)
	require.NoError(t, err)
	assert.Equal(t, FaultFaulting, msg.Value)
}

func TestValueMessage_UnmarshalClearInt(t *testing.T) {
	var msg ValueMessage
	err := json.Unmarshal([]byte(`{"value": 0, "timestamp": 1706284800}`), &msg)
	require.NoError(t, err)
	assert.Equal(t, FaultClear, msg.Value)
}

func TestValueMessage_UnmarshalClearFloat(t *testing.T) {
	var msg ValueMessage
	err := json.Unmarshal([]byte(`{"value": 0.0, "timestamp": 1706284800}`), &msg)
	require.NoError(t, err)
	assert.Equal(t, FaultClear, msg.Value)
}

func TestValueMessage_UnmarshalInvalidInt(t *testing.T) {
	var msg ValueMessage
	err := json.Unmarshal([]byte(`{"value": 2, "timestamp": 1706284800}`), &msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid binary value")
}

func TestValueMessage_UnmarshalInvalidFloat(t *testing.T) {
	var msg ValueMessage
	err := json.Unmarshal([]byte(`{"value": 0.5, "timestamp": 1706284800}`), &msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid binary value")
}

func TestValueMessage_UnmarshalNonNumeric(t *testing.T) {
	var msg ValueMessage
	err := json.Unmarshal([]byte(`{"value": "1", "timestamp": 1706284800}`), &msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid binary value")
}

func TestFaultValue_Marshal(t *testing.T) {
	data, err := json.Marshal(FaultFaulting)
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	data, err = json.Marshal(FaultClear)
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestFaultValue_String(t *testing.T) {
	assert.Equal(t, "Clear", FaultClear.String())
	assert.Equal(t, "Faulting", FaultFaulting.String())
}

func TestPointMetadata_UnmarshalCamelCase(t *testing.T) {
	payload := `{
		"pointType": "LeakDetectRack",
		"objectType": "Rack",
		"rackName": "Rack-01",
		"rackID": "rack-001"
	}`

	var metadata PointMetadata
	err := json.Unmarshal([]byte(payload), &metadata)
	require.NoError(t, err)

	assert.Equal(t, "LeakDetectRack", metadata.PointType)
	assert.Equal(t, "Rack", metadata.ObjectType)
	assert.Equal(t, "Rack-01", metadata.RackName)
	assert.Equal(t, "rack-001", metadata.RackID)
	assert.True(t, metadata.IsSupportedLeakType())

	leakType, ok := metadata.LeakPointType()
	require.True(t, ok)
	assert.Equal(t, LeakPointRack, leakType)
}

func TestPointMetadata_UnsupportedPointType(t *testing.T) {
	metadata := PointMetadata{
		PointType:  "LeakResponseRackLiquidIsolationStatus",
		ObjectType: "Rack",
		RackName:   "Rack-01",
		RackID:     "rack-001",
	}

	assert.False(t, metadata.IsSupportedLeakType())
	_, ok := metadata.LeakPointType()
	assert.False(t, ok)
}

func TestParseLeakPointType(t *testing.T) {
	tests := []struct {
		pointType string
		want      LeakPointType
		alertID   string
		desc      string
	}{
		{"LeakDetectRack", LeakPointRack, "BmsLeakDetectRack", "Leak detected"},
		{"LeakSensorFaultRack", LeakPointRackSensorFault, "BmsLeakSensorFaultRack", "Leak sensor fault"},
		{"LeakDetectRackTray", LeakPointRackTray, "BmsLeakDetectRackTray", "Rack tray leak detected"},
	}

	for _, tt := range tests {
		leakType, ok := ParseLeakPointType(tt.pointType)
		require.True(t, ok, tt.pointType)
		assert.Equal(t, tt.want, leakType)
		assert.Equal(t, tt.alertID, leakType.AlertID())
		assert.Equal(t, tt.desc, leakType.Description())
	}

	_, ok := ParseLeakPointType("TemperatureRack")
	assert.False(t, ok)
}
