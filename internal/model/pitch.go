package model

// Pitch is the generated sales narrative for one client.
type Pitch struct {
	Short          string           `json:"short"`
	Long           string           `json:"long"`
	LongStructured *StructuredPitch `json:"long_structured,omitempty"`
}

// StructuredPitch is the sectioned bullet representation of the long pitch,
// suitable for interactive display.
type StructuredPitch struct {
	Sections []PitchSection `json:"sections"`
}

// PitchSection is one titled section of the structured pitch.
type PitchSection struct {
	Title        string        `json:"title"`
	BulletPoints []BulletPoint `json:"bullet_points"`
}

// BulletPoint is one expandable bullet: a summary line plus detail lines.
type BulletPoint struct {
	Summary string   `json:"summary"`
	Details []string `json:"details"`
}
