// Package graph stores abilities and their feat prerequisites in Neo4j.
package graph

import (
	"context"
	"fmt"

	"ability-lst/internal/ability"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Node is an ability as stored in the graph.
type Node struct {
	ID     string
	Key    string
	Name   string
	Kind   string
	System string
	Source string
}

// Edge is a REQUIRES relationship from an ability to a feat it needs.
type Edge struct {
	FromID string
	ToID   string
}

// NodeID identifies an ability within its rule system.
func NodeID(rs ability.RuleSystem, key string) string {
	return rs.Slug() + "/" + key
}

// NodesAndEdges converts abilities to graph nodes and their required feats to
// REQUIRES edges.
func NodesAndEdges(abilities []*ability.Ability, rs ability.RuleSystem, source string) ([]Node, []Edge) {
	nodes := make([]Node, 0, len(abilities))
	var edges []Edge
	for _, a := range abilities {
		id := NodeID(rs, a.Key)
		nodes = append(nodes, Node{
			ID:     id,
			Key:    a.Key,
			Name:   a.Name,
			Kind:   a.Kind.String(),
			System: rs.Slug(),
			Source: source,
		})
		for _, feat := range a.RequiredFeats {
			edges = append(edges, Edge{FromID: id, ToID: NodeID(rs, feat)})
		}
	}
	return nodes, edges
}

// GraphBuilder writes abilities to the Neo4j graph.
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (a:Ability) REQUIRE a.id IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// AddAbilities merges nodes, then their REQUIRES edges. A required feat that
// no indexed file defines becomes a placeholder node.
func (gb *GraphBuilder) AddAbilities(ctx context.Context, nodes []Node, edges []Edge) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, n := range nodes {
		_, err := session.Run(ctx, `
			MERGE (a:Ability {id: $id})
			SET a.key = $key,
			    a.name = $name,
			    a.kind = $kind,
			    a.system = $system,
			    a.source = $source,
			    a.placeholder = false
		`, map[string]any{
			"id":     n.ID,
			"key":    n.Key,
			"name":   n.Name,
			"kind":   n.Kind,
			"system": n.System,
			"source": n.Source,
		})
		if err != nil {
			return fmt.Errorf("upsert ability %s: %w", n.ID, err)
		}
	}

	log.Info().Int("abilities", len(nodes)).Msg("Merged ability nodes")

	for _, e := range edges {
		_, err := session.Run(ctx, `
			MATCH (a:Ability {id: $from})
			MERGE (b:Ability {id: $to})
			ON CREATE SET b.placeholder = true
			MERGE (a)-[:REQUIRES]->(b)
		`, map[string]any{
			"from": e.FromID,
			"to":   e.ToID,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("from", e.FromID).
				Str("to", e.ToID).
				Msg("Failed to create prerequisite edge")
		}
	}

	log.Info().Int("edges", len(edges)).Msg("Merged prerequisite edges")
	return nil
}
