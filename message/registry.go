package message

import (
	"sort"
	"sync"

	"github.com/hupe1980/blockmesh/core"
)

// Translator maps a provider's raw message to the standardized block
// sequence. Implementations must be pure and total: they never fail and
// return a fresh slice on every call.
type Translator interface {
	TranslateMessage(m Message) []core.Block
	TranslateChunk(c Chunk) []core.Block
}

// TranslatorFuncs adapts a pair of functions to the Translator interface. A
// nil Chunk function translates the chunk as a message.
type TranslatorFuncs struct {
	Message func(m Message) []core.Block
	Chunk   func(c Chunk) []core.Block
}

// TranslateMessage implements Translator.
func (f TranslatorFuncs) TranslateMessage(m Message) []core.Block { return f.Message(m) }

// TranslateChunk implements Translator.
func (f TranslatorFuncs) TranslateChunk(c Chunk) []core.Block {
	if f.Chunk == nil {
		return f.Message(c.Message)
	}
	return f.Chunk(c)
}

// Registry maps provider tags to Translators. Registration normally happens
// once at startup; later registrations of the same tag replace earlier ones.
type Registry struct {
	mu          sync.RWMutex
	translators map[string]Translator
	fallback    Translator
}

// NewRegistry creates an empty registry that falls back to GenericTranslator
// for unknown tags.
func NewRegistry() *Registry {
	return &Registry{translators: map[string]Translator{}, fallback: GenericTranslator{}}
}

// DefaultRegistry is consulted by Message.ContentBlocks and
// Chunk.ContentBlocks. Provider packages register into it from init.
var DefaultRegistry = NewRegistry()

// Register binds tag to t in DefaultRegistry.
func Register(tag string, t Translator) { DefaultRegistry.Register(tag, t) }

// Resolve looks up tag in DefaultRegistry.
func Resolve(tag string) (Translator, bool) { return DefaultRegistry.Resolve(tag) }

// Register binds tag to t, replacing any previous binding.
func (r *Registry) Register(tag string, t Translator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translators[tag] = t
}

// Resolve returns the Translator bound to tag.
func (r *Registry) Resolve(tag string) (Translator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.translators[tag]
	return t, ok
}

// Tags returns the registered provider tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.translators))
	for tag := range r.translators {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TranslateMessage translates m with the Translator registered for its
// provider tag, or the generic fallback.
func (r *Registry) TranslateMessage(m Message) []core.Block {
	return r.lookup(m.Provider()).TranslateMessage(m)
}

// TranslateChunk translates c with the Translator registered for its
// provider tag, or the generic fallback.
func (r *Registry) TranslateChunk(c Chunk) []core.Block {
	return r.lookup(c.Provider()).TranslateChunk(c)
}

func (r *Registry) lookup(tag string) Translator {
	if t, ok := r.Resolve(tag); ok {
		return t
	}
	return r.fallback
}
