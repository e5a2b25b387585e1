package graph

import (
	"context"
	"fmt"
	"strings"

	"ability-lst/internal/ability"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Prerequisite is one feat in an ability's prerequisite chain.
type Prerequisite struct {
	Key   string
	Depth int
	// Defined is false when no indexed file defines the feat.
	Defined bool
}

// GraphQuerier reads prerequisite chains from the graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// Prerequisites returns every feat key reaches through REQUIRES edges, up to
// maxDepth hops, nearest first.
func (gq *GraphQuerier) Prerequisites(ctx context.Context, rs ability.RuleSystem, key string, maxDepth int) ([]Prerequisite, error) {
	if maxDepth <= 0 {
		maxDepth = 5
	}
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	// Path length bounds cannot be parameters.
	result, err := session.Run(ctx, fmt.Sprintf(`
		MATCH p = (a:Ability {id: $id})-[:REQUIRES*1..%d]->(req:Ability)
		WITH req, min(length(p)) AS depth
		RETURN req.id AS id, coalesce(req.key, '') AS key, coalesce(req.placeholder, false) AS placeholder, depth
		ORDER BY depth, id
	`, maxDepth), map[string]any{"id": NodeID(rs, key)})
	if err != nil {
		return nil, fmt.Errorf("query prerequisites: %w", err)
	}

	var out []Prerequisite
	for result.Next(ctx) {
		record := result.Record()
		id, _ := record.Get("id")
		k, _ := record.Get("key")
		placeholder, _ := record.Get("placeholder")
		depth, _ := record.Get("depth")

		p := Prerequisite{Key: fmt.Sprintf("%v", k)}
		if p.Key == "" {
			p.Key = keyFromID(fmt.Sprintf("%v", id))
		}
		if d, ok := depth.(int64); ok {
			p.Depth = int(d)
		}
		if b, ok := placeholder.(bool); ok {
			p.Defined = !b
		}
		out = append(out, p)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read prerequisites: %w", err)
	}

	log.Debug().Str("key", key).Int("prerequisites", len(out)).Msg("Graph query complete")
	return out, nil
}

// Dependents returns the keys of abilities that directly require key.
func (gq *GraphQuerier) Dependents(ctx context.Context, rs ability.RuleSystem, key string) ([]string, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (d:Ability)-[:REQUIRES]->(a:Ability {id: $id})
		RETURN d.key AS key
		ORDER BY key
	`, map[string]any{"id": NodeID(rs, key)})
	if err != nil {
		return nil, fmt.Errorf("query dependents: %w", err)
	}

	var keys []string
	for result.Next(ctx) {
		k, _ := result.Record().Get("key")
		keys = append(keys, fmt.Sprintf("%v", k))
	}
	return keys, result.Err()
}

func keyFromID(id string) string {
	if _, key, ok := strings.Cut(id, "/"); ok {
		return key
	}
	return id
}
