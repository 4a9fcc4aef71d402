package story

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Line ids the engine jumps to by name.
const (
	LineCallFailPlatelet   = "4_FAIL_P"
	LineCallFailBCell      = "4_FAIL_B"
	LineCallSuccess        = "4_SUCCESS_M"
	LineWeaponFailAntibody = "4_FAIL_ANTIBODY"
	LineWeaponFailDrill    = "4_FAIL_DRILL"
	LineWeaponSuccess      = "4_SUCCESS_NET"
	LineResurrect          = "RESURRECT_1"
)

// Item ids with special purchase effects.
const (
	ItemDiary = "diary"
	ItemKey   = "key"
	ItemVideo = "video"
)

//go:embed data/content.yaml
var defaultContent []byte

// content mirrors the YAML document layout.
type content struct {
	InitialHP      int                       `yaml:"initial_hp"`
	MaxHP          int                       `yaml:"max_hp"`
	ThymusAnswer   string                    `yaml:"thymus_answer"`
	StartContacts  []CharacterID             `yaml:"start_contacts"`
	StartInventory []string                  `yaml:"start_inventory"`
	ShopItems      []string                  `yaml:"shop_items"`
	Characters     map[CharacterID]Character `yaml:"characters"`
	Items          map[string]Item           `yaml:"items"`
	Quiz           []QuizQuestion            `yaml:"quiz"`
	Diary          []DiaryPage               `yaml:"diary"`
	Scripts        map[Scene][]Line          `yaml:"scripts"`
}

// Catalog holds every piece of static content: scene scripts, character
// metadata, the item catalog, the quiz bank and the diary. It is immutable
// after loading.
type Catalog struct {
	InitialHP      int
	MaxHP          int
	ThymusAnswer   string
	StartContacts  []CharacterID
	StartInventory []string
	ShopItems      []string

	characters map[CharacterID]Character
	items      map[string]Item
	quiz       []QuizQuestion
	diary      []DiaryPage
	scripts    map[Scene]Script
}

// LoadCatalog parses a YAML content document.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c content
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	if c.MaxHP <= 0 {
		c.MaxHP = c.InitialHP
	}

	cat := &Catalog{
		InitialHP:      c.InitialHP,
		MaxHP:          c.MaxHP,
		ThymusAnswer:   c.ThymusAnswer,
		StartContacts:  c.StartContacts,
		StartInventory: c.StartInventory,
		ShopItems:      c.ShopItems,
		characters:     make(map[CharacterID]Character, len(c.Characters)),
		items:          make(map[string]Item, len(c.Items)),
		quiz:           c.Quiz,
		diary:          c.Diary,
		scripts:        make(map[Scene]Script, len(AllScenes)),
	}
	for id, ch := range c.Characters {
		ch.ID = id
		cat.characters[id] = ch
	}
	for id, it := range c.Items {
		it.ID = id
		cat.items[id] = it
	}
	for scene := range c.Scripts {
		if !scene.Valid() {
			return nil, fmt.Errorf("script for unknown scene %q", scene)
		}
	}
	// Every scene gets an entry, possibly empty.
	for _, scene := range AllScenes {
		cat.scripts[scene] = NewScript(c.Scripts[scene])
	}
	return cat, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in catalog. The embedded content is validated by
// the package tests, so an error here means the binary was built from broken
// content.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadCatalog(bytes.NewReader(defaultContent))
	})
	return defaultCatalog, defaultErr
}

// LoadFile reads a catalog from a YAML file. An empty path returns Default.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// MustDefault is Default for callers that cannot proceed without content.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Script returns the script for a scene. Unknown scenes yield an empty script.
func (c *Catalog) Script(scene Scene) Script {
	return c.scripts[scene]
}

// Character returns the metadata for a cast member.
func (c *Catalog) Character(id CharacterID) (Character, bool) {
	ch, ok := c.characters[id]
	return ch, ok
}

// Characters returns the cast metadata in cast order.
func (c *Catalog) Characters() []Character {
	out := make([]Character, 0, len(c.characters))
	for _, id := range Cast {
		if ch, ok := c.characters[id]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// Item looks up an item by catalog id.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Items returns all catalog items sorted by id.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Quiz returns the question at index i, if any.
func (c *Catalog) Quiz(i int) (QuizQuestion, bool) {
	if i < 0 || i >= len(c.quiz) {
		return QuizQuestion{}, false
	}
	return c.quiz[i], true
}

// QuizLen returns the size of the quiz bank.
func (c *Catalog) QuizLen() int {
	return len(c.quiz)
}

// Diary returns the diary pages.
func (c *Catalog) Diary() []DiaryPage {
	out := make([]DiaryPage, len(c.diary))
	copy(out, c.diary)
	return out
}

// requiredLines are the jump targets the engine resolves by id.
var requiredLines = map[Scene][]string{
	SceneLungBattle: {
		LineCallFailPlatelet,
		LineCallFailBCell,
		LineCallSuccess,
		LineWeaponFailAntibody,
		LineWeaponFailDrill,
		LineWeaponSuccess,
		LineResurrect,
	},
}

// Validate checks the content for authoring mistakes: duplicate ids, jumps
// out of range, unknown characters, missing jump targets and broken quiz or
// shop entries. It returns one message per problem.
func (c *Catalog) Validate() []string {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.InitialHP <= 0 {
		addf("initial_hp must be positive, got %d", c.InitialHP)
	}
	if c.MaxHP < c.InitialHP {
		addf("max_hp %d is below initial_hp %d", c.MaxHP, c.InitialHP)
	}
	if strings.TrimSpace(c.ThymusAnswer) == "" {
		addf("thymus_answer must not be empty")
	}

	for _, id := range Cast {
		if _, ok := c.characters[id]; !ok {
			addf("character %s has no metadata", id)
		}
	}
	for id := range c.characters {
		if !id.IsCast() {
			addf("character %q is not part of the cast", id)
		}
	}
	for _, id := range c.StartContacts {
		if !id.IsCast() {
			addf("start contact %q is not part of the cast", id)
		}
	}
	for _, id := range c.StartInventory {
		if _, ok := c.items[id]; !ok {
			addf("start inventory item %q is not in the item catalog", id)
		}
	}
	for _, id := range c.ShopItems {
		it, ok := c.items[id]
		if !ok {
			addf("shop item %q is not in the item catalog", id)
			continue
		}
		if it.Price < 0 {
			addf("shop item %q has negative price %d", id, it.Price)
		}
	}

	for i, q := range c.quiz {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			addf("quiz %d: correct_index %d out of range for %d options", i, q.CorrectIndex, len(q.Options))
		}
	}
	if len(c.quiz) < 2 {
		addf("quiz bank needs at least 2 questions, got %d", len(c.quiz))
	}

	for _, scene := range AllScenes {
		script := c.scripts[scene]
		seen := make(map[string]bool, script.Len())
		for i, l := range script.lines {
			if l.ID == "" {
				addf("%s[%d]: missing id", scene, i)
			} else if seen[l.ID] {
				addf("%s[%d]: duplicate id %q", scene, i, l.ID)
			}
			seen[l.ID] = true

			if !l.Speaker.IsSpeaker() {
				addf("%s/%s: unknown speaker %q", scene, l.ID, l.Speaker)
			}
			for _, ch := range l.ShowCharacters {
				if !ch.IsCast() {
					addf("%s/%s: unknown character %q in show_characters", scene, l.ID, ch)
				}
			}
			if l.NextIndex != nil && (*l.NextIndex < 0 || *l.NextIndex >= script.Len()) {
				addf("%s/%s: next_index %d out of range", scene, l.ID, *l.NextIndex)
			}
		}
		for _, id := range requiredLines[scene] {
			if _, ok := script.IndexOf(id); !ok {
				addf("%s: missing required line %q", scene, id)
			}
		}
	}
	return problems
}
