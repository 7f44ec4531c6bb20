package registry

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/st3v3nmw/hiscore/internal/attest"
)

var checklists = make(map[string]*Checklist)

// Checklist is an ordered set of conformance stages run against a server.
type Checklist struct {
	Key        string
	Name       string
	Summary    string
	ServerArgs []string
	Stages     map[string]*Stage
	StageOrder []string
}

type Stage struct {
	Name string
	Fn   StageFunc
}

type StageFunc func() *attest.Suite

func (c *Checklist) AddStage(key, name string, fn StageFunc) {
	if c.Stages == nil {
		c.Stages = make(map[string]*Stage)
	}

	c.Stages[key] = &Stage{Name: name, Fn: fn}
	c.StageOrder = append(c.StageOrder, key)
}

func (c *Checklist) GetStage(key string) (*Stage, error) {
	stage, exists := c.Stages[key]
	if !exists {
		return nil, fmt.Errorf("stage %q not found in checklist %s (have %s)",
			key, c.Key, strings.Join(c.StageOrder, ", "))
	}

	return stage, nil
}

func (c *Checklist) Len() int {
	return len(c.StageOrder)
}

// Describe renders the checklist and its stages for `hiscore check --list`.
func (c *Checklist) Describe() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", c.Name, c.Key)
	if c.Summary != "" {
		fmt.Fprintf(&b, "%s\n", c.Summary)
	}

	for i, key := range c.StageOrder {
		fmt.Fprintf(&b, "  %d. %s - %s\n", i+1, key, c.Stages[key].Name)
	}

	return b.String()
}

func RegisterChecklist(key string, checklist *Checklist) {
	if len(checklist.Stages) == 0 {
		log.Fatalf("Cannot register empty checklist %s.", key)
	}

	checklist.Key = key
	checklists[key] = checklist
}

func GetChecklist(key string) (*Checklist, error) {
	checklist, exists := checklists[key]
	if !exists {
		return nil, fmt.Errorf("checklist %q not found", key)
	}

	return checklist, nil
}

// Keys returns the registered checklist keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(checklists))
	for key := range checklists {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}
