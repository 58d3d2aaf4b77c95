package cache

import "time"

// ParserCacheConfig sizes the four parser-facing caches (spec §4.7
// "Parser cache"). These are distinct from the optimizer's plan cache
// (there is none persisted across restarts per spec §1 Non-goals) — they
// sit in front of the lexer/parser only.
type ParserCacheConfig struct {
	KeywordCapacity    int
	IdentifierCapacity int
	ASTCapacity        int
	PlanCapacity       int
	TTL                time.Duration
}

// Preset config names mirrored from spec §4.7.
const (
	PresetDefault     = "default"
	PresetDevelopment = "development"
	PresetProduction  = "production"
	PresetTesting     = "testing"
)

// ParserCachePreset returns the named preset configuration, or
// PresetDefault's configuration if name is unrecognized.
func ParserCachePreset(name string) ParserCacheConfig {
	switch name {
	case PresetDevelopment:
		return ParserCacheConfig{KeywordCapacity: 64, IdentifierCapacity: 256, ASTCapacity: 64, PlanCapacity: 64, TTL: time.Minute}
	case PresetProduction:
		return ParserCacheConfig{KeywordCapacity: 512, IdentifierCapacity: 8192, ASTCapacity: 2048, PlanCapacity: 2048, TTL: 15 * time.Minute}
	case PresetTesting:
		return ParserCacheConfig{KeywordCapacity: 8, IdentifierCapacity: 8, ASTCapacity: 8, PlanCapacity: 8, TTL: time.Second}
	default:
		return ParserCacheConfig{KeywordCapacity: 128, IdentifierCapacity: 1024, ASTCapacity: 256, PlanCapacity: 256, TTL: 5 * time.Minute}
	}
}

// ParserCacheSet is the four-way cache set of spec §4.7: keyword cache,
// identifier cache, AST cache, plan cache.
type ParserCacheSet struct {
	Keywords    Cache[string, bool]
	Identifiers Cache[string, int64]
	AST         Cache[uint64, any]
	Plans       Cache[uint64, any]
}

// NewParserCacheSet builds a set of LRU caches sized by cfg. Capacities
// must all be positive (NewLRU rejects zero); callers passing a preset
// from ParserCachePreset always satisfy this.
func NewParserCacheSet(cfg ParserCacheConfig) (*ParserCacheSet, error) {
	keywords, err := NewLRU[string, bool](cfg.KeywordCapacity)
	if err != nil {
		return nil, err
	}
	identifiers, err := NewLRU[string, int64](cfg.IdentifierCapacity)
	if err != nil {
		return nil, err
	}
	ast, err := NewLRU[uint64, any](cfg.ASTCapacity)
	if err != nil {
		return nil, err
	}
	plans, err := NewLRU[uint64, any](cfg.PlanCapacity)
	if err != nil {
		return nil, err
	}
	return &ParserCacheSet{Keywords: keywords, Identifiers: identifiers, AST: ast, Plans: plans}, nil
}
