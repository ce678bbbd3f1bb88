package gameapi

// InputSource tags the payload carried by an InputEvent.
type InputSource int32

const (
	InputUnknown InputSource = iota
	InputDigitalButton
	InputAnalogButton
	InputAnalogStick
	InputAccelerometer
	InputKey
	InputRelPointer
	InputAbsPointer
	InputMotor
)

// String returns a short name for the input source.
func (s InputSource) String() string {
	switch s {
	case InputDigitalButton:
		return "digital button"
	case InputAnalogButton:
		return "analog button"
	case InputAnalogStick:
		return "analog stick"
	case InputAccelerometer:
		return "accelerometer"
	case InputKey:
		return "key"
	case InputRelPointer:
		return "relative pointer"
	case InputAbsPointer:
		return "absolute pointer"
	case InputMotor:
		return "motor"
	default:
		return "unknown"
	}
}

// Key modifier bits.
const (
	ModNone     uint32 = 0
	ModShift    uint32 = 1 << 0
	ModCtrl     uint32 = 1 << 1
	ModAlt      uint32 = 1 << 2
	ModMeta     uint32 = 1 << 3
	ModSuper    uint32 = 1 << 4
	ModNumLock  uint32 = 1 << 5
	ModCapsLock uint32 = 1 << 6
)

type DigitalButtonEvent struct {
	Pressed bool
}

type AnalogButtonEvent struct {
	Magnitude float32 // 0..1
}

type AnalogStickEvent struct {
	X float32 // -1..1
	Y float32
}

type AccelerometerEvent struct {
	X float32
	Y float32
	Z float32
}

type KeyEvent struct {
	Pressed   bool
	Character uint32 // unicode code point, 0 if none
	Modifiers uint32
}

type RelPointerEvent struct {
	X int32
	Y int32
}

type AbsPointerEvent struct {
	Pressed bool
	X       float32 // -1..1 across the screen
	Y       float32
}

type MotorEvent struct {
	Magnitude float32
}

// InputEvent is the tagged union exchanged with the client in both
// directions. Only the payload matching Source is meaningful.
type InputEvent struct {
	Source       InputSource
	Port         int
	ControllerID string
	FeatureName  string

	DigitalButton DigitalButtonEvent
	AnalogButton  AnalogButtonEvent
	AnalogStick   AnalogStickEvent
	Accelerometer AccelerometerEvent
	Key           KeyEvent
	RelPointer    RelPointerEvent
	AbsPointer    AbsPointerEvent
	Motor         MotorEvent
}

// ControllerLayout is the capability description of a controller bound to
// a port.
type ControllerLayout struct {
	ControllerID   string
	ProvidesInput  bool
	DigitalButtons int
	AnalogButtons  int
	AnalogSticks   int
	Accelerometers int
	Keys           int
	RelPointers    int
	AbsPointers    int
	Motors         int
}

// FeatureCount returns the total number of features in the layout.
func (l ControllerLayout) FeatureCount() int {
	return l.DigitalButtons + l.AnalogButtons + l.AnalogSticks + l.Accelerometers +
		l.Keys + l.RelPointers + l.AbsPointers + l.Motors
}
