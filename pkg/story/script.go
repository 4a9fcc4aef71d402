package story

// Line is a single scripted dialogue line.
type Line struct {
	ID             string        `yaml:"id" json:"id"`
	Speaker        CharacterID   `yaml:"speaker" json:"speaker"`
	Text           string        `yaml:"text" json:"text"`
	Trigger        Trigger       `yaml:"trigger" json:"trigger"`
	ShowCharacters []CharacterID `yaml:"show_characters,omitempty" json:"show_characters,omitempty"` // render order = list order
	NextIndex      *int          `yaml:"next_index,omitempty" json:"next_index,omitempty"`
}

// Script is the ordered, immutable sequence of lines for one scene.
// Line ids are indexed once at construction.
type Script struct {
	lines []Line
	index map[string]int
}

// NewScript builds a script and its id index. When ids repeat, the first
// occurrence wins; Catalog.Validate reports the duplicate.
func NewScript(lines []Line) Script {
	s := Script{
		lines: make([]Line, len(lines)),
		index: make(map[string]int, len(lines)),
	}
	copy(s.lines, lines)
	for i, l := range s.lines {
		if _, exists := s.index[l.ID]; !exists {
			s.index[l.ID] = i
		}
	}
	return s
}

// Len returns the number of lines.
func (s Script) Len() int {
	return len(s.lines)
}

// Lines returns a copy of the lines.
func (s Script) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// SafeIndex maps i into [0, Len()) by falling back to 0 for out-of-range
// values. It returns -1 for an empty script.
func (s Script) SafeIndex(i int) int {
	if len(s.lines) == 0 {
		return -1
	}
	if i < 0 || i >= len(s.lines) {
		return 0
	}
	return i
}

// Line reads the line at i, reading line 0 instead when i is out of range.
// ok is false only for an empty script.
func (s Script) Line(i int) (Line, bool) {
	safe := s.SafeIndex(i)
	if safe < 0 {
		return Line{}, false
	}
	return s.lines[safe], true
}

// IndexOf returns the position of the line with the given id.
func (s Script) IndexOf(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}
