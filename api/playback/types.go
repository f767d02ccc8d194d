package playback

import "fmt"

// Clip is one resolved sign-clip playback descriptor: the asset path and how
// long the player should hold it on screen.
type Clip struct {
	Path    string  `json:"path"`
	Seconds float64 `json:"seconds"`
}

// Validate enforces descriptor invariants.
func (c Clip) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("clip path is required")
	}
	if c.Seconds <= 0 {
		return fmt.Errorf("clip seconds must be >0")
	}
	return nil
}
