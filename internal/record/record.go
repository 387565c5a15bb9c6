// Package record defines the structured representation of one command's
// documentation in one language, the canonical unit produced by the learn
// parser and the markdown importer and consumed by the store and the index.
package record

import (
	"fmt"
	"strings"
)

// DefaultTag is the classification used when a source provides no category or
// platform.
const DefaultTag = "common"

// Example is one usage example: a short description paired with the command
// line that demonstrates it. Order is meaningful; the first example is the
// primary one.
type Example struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Command is the validated, parsed documentation for one command in one
// language. A Command is uniquely keyed by (Name, Lang); re-learning or
// re-importing the same key replaces the prior record.
type Command struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Platform    string    `json:"platform"`
	Lang        string    `json:"lang"`
	Examples    []Example `json:"examples"`
	Content     string    `json:"content"`
}

// Key returns the storage and index key "lang:name".
func (c *Command) Key() string {
	return Key(c.Name, c.Lang)
}

// Key builds the "lang:name" key for a (name, lang) pair.
func Key(name, lang string) string {
	return lang + ":" + name
}

// Validate reports why the record may not be persisted or indexed. A record
// with an empty description or no examples is discarded at the parser
// boundary, counted, and never silently dropped.
func (c *Command) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("record has empty name")
	}
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("record %q has empty description", c.Name)
	}
	if len(c.Examples) == 0 {
		return fmt.Errorf("record %q has no examples", c.Name)
	}
	return nil
}

// Normalize fills default classification tags in place.
func (c *Command) Normalize() {
	if c.Category == "" {
		c.Category = DefaultTag
	}
	if c.Platform == "" {
		c.Platform = DefaultTag
	}
}

// Metadata describes the state of the whole data set.
type Metadata struct {
	Version      string   `json:"version"`
	CommandCount int      `json:"command_count"`
	LastUpdate   string   `json:"last_update"`
	Languages    []string `json:"languages"`
}
