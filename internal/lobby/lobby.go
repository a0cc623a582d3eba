// Package lobby manages the set of live truco tables.
package lobby

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"truco-lite/truco"
)

// Lobby holds all tables by ID and creates new ones on demand.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*truco.Game
	nextID uint64

	defaultConfig truco.Config
	ledger        truco.Ledger
}

func New(ledger truco.Ledger) *Lobby {
	return &Lobby{
		tables:        make(map[string]*truco.Game),
		defaultConfig: truco.DefaultConfig(),
		ledger:        ledger,
	}
}

// CreateTable opens a new table owned by ownerID and seats the owner.
func (l *Lobby) CreateTable(name, ownerID, ownerName string, bet int64) (*truco.Game, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	tableID := fmt.Sprintf("table_%d", l.nextID)
	g, err := truco.NewGame(tableID, name, bet, ownerID, l.defaultConfig, l.ledger)
	if err != nil {
		return nil, err
	}
	if err := g.Join(ownerID, ownerName); err != nil {
		return nil, err
	}
	l.tables[tableID] = g
	log.Printf("[Lobby] %s created table %s (bet=%d)", ownerID, tableID, bet)
	return g, nil
}

// GetTable returns a table by ID, or nil.
func (l *Lobby) GetTable(tableID string) *truco.Game {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

// RemoveTable drops a table from the registry.
func (l *Lobby) RemoveTable(tableID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tables[tableID]; ok {
		delete(l.tables, tableID)
		log.Printf("[Lobby] removed table %s", tableID)
	}
}

// ListTables returns all table IDs in stable order.
func (l *Lobby) ListTables() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.tables))
	for id := range l.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
