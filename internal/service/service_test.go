package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/auth"
	"github.com/kkkqkx123/graphdb/internal/catalog"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/index"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/txn"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// stubParser returns a fixed ast.Query (or error) for every Parse call,
// standing in for the real Cypher/NGQL lexer-parser spec §1 treats as an
// external collaborator.
type stubParser struct {
	query ast.Query
	err   error
}

func (p *stubParser) Parse(string) (ast.Query, error) {
	if p.err != nil {
		return ast.Query{}, p.err
	}
	return p.query, nil
}

type testFixture struct {
	t    *testing.T
	svc  *GraphService
	authn *auth.Authenticator
	cat  *catalog.Catalog
}

func newFixture(t *testing.T, parser Parser) *testFixture {
	t.Helper()
	store := kv.NewMemoryStore()
	mgr := txn.NewManager(store, txn.DefaultManagerConfig())
	cat := catalog.New()
	idxSvc, err := index.NewService(store, 16)
	require.NoError(t, err)

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost
	authn, err := auth.NewAuthenticator(authCfg)
	require.NoError(t, err)

	svc := New(store, mgr, cat, idxSvc, authn, parser, DefaultConfig())
	return &testFixture{t: t, svc: svc, authn: authn, cat: cat}
}

// loginSession authenticates "alice" and returns a GraphService session id
// bound to no space yet.
func (f *testFixture) loginSession() string {
	f.t.Helper()
	_, err := f.authn.CreateUser("alice", "hunter22", []auth.Role{auth.RoleAdmin})
	require.NoError(f.t, err)
	authSessID, _, err := f.authn.Authenticate("alice", "hunter22")
	require.NoError(f.t, err)
	sess, err := f.svc.CreateSession(authSessID)
	require.NoError(f.t, err)
	return sess.ID
}

func TestCreateSessionRejectsUnknownAuthSession(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.CreateSession("not-a-real-session")
	assert.Error(t, err)
}

func TestUseSpaceBindsSessionToSpace(t *testing.T) {
	f := newFixture(t, nil)
	sessID := f.loginSession()

	_, err := f.svc.CreateSpace("galaxy")
	require.NoError(t, err)
	require.NoError(t, f.svc.UseSpace(sessID, "galaxy"))

	space, err := f.svc.boundSpace(sessID)
	require.NoError(t, err)
	assert.NotEqual(t, ids.SpaceId(0), space)
}

func TestBoundSpaceRejectsSessionWithNoSpaceSelected(t *testing.T) {
	f := newFixture(t, nil)
	sessID := f.loginSession()
	_, err := f.svc.boundSpace(sessID)
	assert.Error(t, err)
}

func TestCloseSessionRemovesSession(t *testing.T) {
	f := newFixture(t, nil)
	sessID := f.loginSession()
	f.svc.CloseSession(sessID)
	_, err := f.svc.Session(sessID)
	assert.Error(t, err)
}

func TestSchemaRoundTripsThroughListers(t *testing.T) {
	f := newFixture(t, nil)
	space, err := f.svc.CreateSpace("graph1")
	require.NoError(t, err)

	_, err = f.svc.CreateTag(space, "Person", []graph.PropertyDef{
		{Name: "name", Type: graph.TypeString},
	}, nil)
	require.NoError(t, err)
	tags, err := f.svc.ListTags(space)
	require.NoError(t, err)
	assert.Contains(t, tags, "Person")

	_, err = f.svc.CreateEdgeType(space, "knows", []graph.PropertyDef{
		{Name: "since", Type: graph.TypeInt, Nullable: true},
	}, nil)
	require.NoError(t, err)
	edgeTypes, err := f.svc.ListEdgeTypes(space)
	require.NoError(t, err)
	assert.Contains(t, edgeTypes, "knows")

	tagSchema, found := f.svc.catalog.TagByName(space, "Person")
	require.True(t, found)
	_, indexErr := f.svc.CreateIndex(space, "person_name", graph.IndexKindTag, tagSchema.ID, 0, []string{"name"}, false)
	require.NoError(t, indexErr)
	indexes, listErr := f.svc.ListIndexes(space)
	require.NoError(t, listErr)
	assert.Contains(t, indexes, "person_name")
}

func TestInsertVertexRejectsMissingRequiredProperty(t *testing.T) {
	f := newFixture(t, nil)
	space, err := f.svc.CreateSpace("graph2")
	require.NoError(t, err)
	tagID, err := f.svc.CreateTag(space, "Person", []graph.PropertyDef{
		{Name: "name", Type: graph.TypeString},
	}, nil)
	require.NoError(t, err)

	err = f.svc.InsertVertex(context.Background(), space, ids.VertexId(1), tagID, map[string]value.Value{})
	assert.Error(t, err)
}

func TestInsertVertexRejectsTypeMismatch(t *testing.T) {
	f := newFixture(t, nil)
	space, err := f.svc.CreateSpace("graph3")
	require.NoError(t, err)
	tagID, err := f.svc.CreateTag(space, "Person", []graph.PropertyDef{
		{Name: "age", Type: graph.TypeInt},
	}, nil)
	require.NoError(t, err)

	err = f.svc.InsertVertex(context.Background(), space, ids.VertexId(1), tagID, map[string]value.Value{
		"age": value.String("not an int"),
	})
	assert.Error(t, err)
}

func TestInsertAndDeleteVertexRoundTrips(t *testing.T) {
	f := newFixture(t, nil)
	space, err := f.svc.CreateSpace("graph4")
	require.NoError(t, err)
	tagID, err := f.svc.CreateTag(space, "Person", []graph.PropertyDef{
		{Name: "name", Type: graph.TypeString},
	}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.svc.InsertVertex(ctx, space, ids.VertexId(1), tagID, map[string]value.Value{
		"name": value.String("Ada"),
	}))
	require.NoError(t, f.svc.DeleteVertex(ctx, space, ids.VertexId(1)))
}

func TestQueryRejectsWhenSessionHasNoSpace(t *testing.T) {
	parser := &stubParser{query: ast.Query{Clauses: []ast.Clause{{Kind: ast.ClauseReturn}}}}
	f := newFixture(t, parser)
	sessID := f.loginSession()

	_, err := f.svc.Query(context.Background(), sessID, "RETURN 1")
	assert.Error(t, err)
}

func TestQueryPropagatesParseError(t *testing.T) {
	parser := &stubParser{err: assertErr{"bad syntax"}}
	f := newFixture(t, parser)
	sessID := f.loginSession()
	_, err := f.svc.CreateSpace("graph5")
	require.NoError(t, err)
	require.NoError(t, f.svc.UseSpace(sessID, "graph5"))

	_, err = f.svc.Query(context.Background(), sessID, "not cypher")
	assert.Error(t, err)
}

// assertErr is a minimal error value for exercising the parse-error path
// without pulling in errors.New at every call site.
type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
