// Package service implements spec §2's "Graph service": the component
// that "orchestrates session -> parse -> validate -> plan -> optimize ->
// execute". It is the seam between the external collaborators spec §1
// names (HTTP transport, auth, the Cypher/NGQL lexer-parser, schema
// management surface) and the core subsystems (planner, optimizer,
// executor, catalog, transaction manager) spec §1 actually specifies.
//
// No single teacher file plays this role directly — straga-Mimir_lite's
// pkg/nornicdb.DB is the closest analogue: it owns a *cypher.Engine plus
// direct Go-typed methods (CreateNode, CreateEdge, ListNodes, ...)
// alongside ExecuteCypher, and GraphService mirrors that split. Schema and
// vertex/edge data-definition operations are exposed as direct Go-typed
// methods here (schema.go), grounded on db.go's CreateNode/CreateEdge/
// ListNodes/ListEdges, because internal/ast intentionally has no
// CREATE/SET/DELETE clause kinds (spec §1 treats the text parser as an
// external collaborator and internal/ast only models the MATCH/WHERE/
// WITH/RETURN/ORDER BY/SKIP/LIMIT/UNWIND clauses the planner lowers);
// Query (query.go) drives the full parse->validate->plan->optimize->
// execute pipeline for that read/traversal surface.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/auth"
	"github.com/kkkqkx123/graphdb/internal/cache"
	"github.com/kkkqkx123/graphdb/internal/catalog"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/exprfn"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/index"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/optimizer"
	"github.com/kkkqkx123/graphdb/internal/planner"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/txn"
)

// Parser is the seam spec §1 names explicitly ("the Cypher/NGQL
// lexer-parser" is out of scope, specified only through the interface the
// core consumes): it turns query text into a validated ast.Query, with its
// Space left at the zero value — GraphService binds the calling session's
// active space before validating/lowering.
type Parser interface {
	Parse(statement string) (ast.Query, error)
}

// Config bundles the runtime knobs GraphService needs beyond the
// sub-component configuration already owned by internal/config's
// individual section structs (callers build those separately and pass the
// resolved values in).
type Config struct {
	OptimizerProfile      optimizer.Profile
	OptimizerMaxIteration int
	OptimizerMaxExplore   int
	DisabledRules         []string
	TxnDefaultOpts        txn.Options
}

// DefaultConfig mirrors internal/config.Default()'s optimizer/transaction
// section values so a GraphService built without an explicit Config still
// behaves sanely.
func DefaultConfig() Config {
	return Config{
		OptimizerProfile:      optimizer.ProfileDefault,
		OptimizerMaxIteration: 10,
		OptimizerMaxExplore:   10,
		TxnDefaultOpts:        txn.Options{Durability: txn.DurabilityImmediate},
	}
}

// GraphService is spec §2's Graph service, wired to one store/catalog/
// index/auth set. It holds no query-specific state itself — each Query
// call builds its own Planner/Optimizer/Context — except the plan cache
// and the live session table.
type GraphService struct {
	cfg     Config
	store   kv.Store
	txns    *txn.Manager
	catalog *catalog.Catalog
	index   *index.Service
	auth    *auth.Authenticator
	parser  Parser
	stats   optimizer.StatisticsProvider
	fns     expr.Functions
	plans   cache.Cache[uint64, *plan.Node]

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New wires a GraphService from its already-constructed collaborators.
// parser may be nil if the caller only intends to drive the direct
// Go-typed schema/data methods (schema.go) without text queries.
func New(store kv.Store, txns *txn.Manager, cat *catalog.Catalog, idx *index.Service, authn *auth.Authenticator, parser Parser, cfg Config) *GraphService {
	plansCache, err := cache.NewLRU[uint64, *plan.Node](512)
	if err != nil {
		// NewLRU only rejects a non-positive capacity; 512 is always valid.
		panic(fmt.Sprintf("service: building plan cache: %v", err))
	}
	return &GraphService{
		cfg:      cfg,
		store:    store,
		txns:     txns,
		catalog:  cat,
		index:    idx,
		auth:     authn,
		parser:   parser,
		stats:    optimizer.NewInMemoryStatistics(),
		fns:      exprfn.Builtins(),
		plans:    plansCache,
		sessions: make(map[string]*Session),
	}
}

// Stats exposes the statistics provider fed to every Query's optimizer, so
// callers (e.g. an admin endpoint, or a background ANALYZE job) can keep
// table/column cardinalities current.
func (g *GraphService) Stats() optimizer.StatisticsProvider { return g.stats }

// newPlanner builds one Planner bound to this service's catalog (so MATCH
// patterns resolve tag/edge-type names) and space. idGen is shared with the
// optimizer that runs over the planner's output, so every plan.Node in one
// statement's tree — logical and physical — draws from the same monotonic
// id sequence (spec §4 "one plan-node id counter per statement").
func (g *GraphService) newPlanner(idGen *plan.IDGenerator, space ids.SpaceId) *planner.Planner {
	p := planner.NewPlanner(idGen, g.cfg.OptimizerMaxIteration, g.cfg.DisabledRules)
	return p.WithResolver(g.catalog, space)
}

func (g *GraphService) newOptimizer() *optimizer.Optimizer {
	return optimizer.New(g.cfg.OptimizerProfile, g.stats, g.cfg.OptimizerMaxIteration, g.cfg.OptimizerMaxExplore)
}

// beginAuto starts an auto-commit transaction for a single statement,
// returning its id; the caller passes that id to finishAuto to commit or
// abort based on the statement's outcome.
func (g *GraphService) beginAuto(ctx context.Context, readOnly bool) (txn.Id, error) {
	opts := g.cfg.TxnDefaultOpts
	opts.ReadOnly = readOnly
	return g.txns.Begin(ctx, opts)
}

func (g *GraphService) finishAuto(id txn.Id, failed bool) error {
	if failed {
		return g.txns.Abort(id)
	}
	return g.txns.Commit(id)
}

// internalErr normalizes any error returned by a sub-component into a
// *grapherr.Error carrying a stable external code, the way every layer
// above storage is expected to (spec §7 "Propagation policy").
func internalErr(err error) error {
	if err == nil {
		return nil
	}
	return grapherr.AsGraphError(err)
}
