package playback

// Dummy is used when the client runs its own loop. It can't pause or seek
// and reports a speed of 1.
type Dummy struct{}

// NewDummy returns a playback that does nothing.
func NewDummy() *Dummy { return &Dummy{} }

func (Dummy) Start()                           {}
func (Dummy) Close()                           {}
func (Dummy) CanPause() bool                   { return false }
func (Dummy) CanSeek() bool                    { return false }
func (Dummy) GetTimeMs() uint64                { return 0 }
func (Dummy) GetTotalTimeMs() uint64           { return 0 }
func (Dummy) GetCacheTimeMs() uint64           { return 0 }
func (Dummy) SeekTimeMs(uint64)                {}
func (Dummy) GetSpeed() float64                { return 1.0 }
func (Dummy) SetSpeed(float64)                 {}
func (Dummy) PauseUnpause()                    {}
func (Dummy) IsPaused() bool                   { return false }
func (Dummy) CreateSavestate() ([]byte, error) { return nil, ErrNotSupported }
func (Dummy) LoadSavestate([]byte) error       { return ErrNotSupported }
