package story

// CharacterID identifies a member of the fixed cast. Speakers also use the
// pseudo-characters SpeakerSystem and SpeakerUnknown.
type CharacterID string

const (
	CharacterPlayer     CharacterID = "PLAYER"
	CharacterRBC        CharacterID = "RBC_08"
	CharacterMacrophage CharacterID = "MACROPHAGE"
	CharacterBCell      CharacterID = "B_CELL"
	CharacterKillerT    CharacterID = "KILLER_T"
	CharacterDendritic  CharacterID = "DENDRITIC"
	CharacterVirus      CharacterID = "VIRUS"
	CharacterPlatelet   CharacterID = "PLATELET"
	CharacterElder      CharacterID = "ELDER"

	SpeakerSystem  CharacterID = "SYSTEM"
	SpeakerUnknown CharacterID = "???"
)

// Cast lists the real characters, excluding speaker placeholders.
var Cast = []CharacterID{
	CharacterPlayer,
	CharacterRBC,
	CharacterMacrophage,
	CharacterBCell,
	CharacterKillerT,
	CharacterDendritic,
	CharacterVirus,
	CharacterPlatelet,
	CharacterElder,
}

// IsCast reports whether id names a real character.
func (id CharacterID) IsCast() bool {
	for _, c := range Cast {
		if c == id {
			return true
		}
	}
	return false
}

// IsSpeaker reports whether id may appear as the speaker of a line.
func (id CharacterID) IsSpeaker() bool {
	return id == SpeakerSystem || id == SpeakerUnknown || id.IsCast()
}

// Character is the static display metadata of a cast member.
type Character struct {
	ID    CharacterID `yaml:"-" json:"id"`
	Name  string      `yaml:"name" json:"name"`
	Color string      `yaml:"color" json:"color"` // presentation hint, e.g. "text-pink-400"
	Bio   string      `yaml:"bio" json:"bio"`
}

// Item is an inventory item as listed in the item catalog.
type Item struct {
	ID          string `yaml:"-" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Price       int    `yaml:"price" json:"price"`
}

// QuizQuestion is one multiple-choice question from the resurrection quiz.
type QuizQuestion struct {
	Question     string   `yaml:"question" json:"question"`
	Options      []string `yaml:"options" json:"options"`
	CorrectIndex int      `yaml:"correct_index" json:"correct_index"`
	RewardHP     int      `yaml:"reward_hp" json:"reward_hp"`
}

// DiaryPage is one page of the red blood cell's diary item.
type DiaryPage struct {
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
}
