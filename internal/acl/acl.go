// Package acl implements the access policy gate. The policy is loaded once at
// startup and treated as read-only for the process lifetime, so lookups are
// safe for any number of concurrent callers.
package acl

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Table maps role -> route pattern -> lowercase HTTP method -> allowed.
type Table map[string]map[string]map[string]bool

// Gate answers allow/deny for a (role, route, method) triple. A miss at any
// level of the table denies.
type Gate struct {
	table Table
}

func New(table Table) *Gate {
	return &Gate{table: table}
}

// Load reads the policy table from a JSON file.
func Load(path string) (*Gate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	return &Gate{table: table}, nil
}

// Allowed reports whether role may invoke method on route. Missing roles,
// routes, or methods all fail closed.
func (g *Gate) Allowed(role, route, method string) bool {
	return g.table[role][route][strings.ToLower(method)]
}
