package models

// LeakPointType enumerates the supported leak detection point kinds.
type LeakPointType int

const (
	// LeakPointRack is rack-level leak detection (0 = No Leak, 1 = Leak Detected).
	LeakPointRack LeakPointType = iota
	// LeakPointRackSensorFault is a rack-level leak sensor fault (0 = OK, 1 = Fault).
	LeakPointRackSensorFault
	// LeakPointRackTray is rack tray leak detection (0 = No Leak, 1 = Leak Detected).
	LeakPointRackTray
)

// Point type identifiers as published by the building management system.
const (
	PointTypeLeakDetectRack      = "LeakDetectRack"
	PointTypeLeakSensorFaultRack = "LeakSensorFaultRack"
	PointTypeLeakDetectRackTray  = "LeakDetectRackTray"
)

// ParseLeakPointType maps a point type identifier to its enum value.
// Unknown identifiers return ok=false; that is a skip condition, not an error.
func ParseLeakPointType(pointType string) (LeakPointType, bool) {
	switch pointType {
	case PointTypeLeakDetectRack:
		return LeakPointRack, true
	case PointTypeLeakSensorFaultRack:
		return LeakPointRackSensorFault, true
	case PointTypeLeakDetectRackTray:
		return LeakPointRackTray, true
	default:
		return 0, false
	}
}

// AlertID returns the stable alert identifier for this leak type.
func (t LeakPointType) AlertID() string {
	switch t {
	case LeakPointRackSensorFault:
		return "BmsLeakSensorFaultRack"
	case LeakPointRackTray:
		return "BmsLeakDetectRackTray"
	default:
		return "BmsLeakDetectRack"
	}
}

// Description returns the human-readable description used in alert messages.
func (t LeakPointType) Description() string {
	switch t {
	case LeakPointRackSensorFault:
		return "Leak sensor fault"
	case LeakPointRackTray:
		return "Rack tray leak detected"
	default:
		return "Leak detected"
	}
}
