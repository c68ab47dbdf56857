// Package message holds the raw, untranslated provider message entity and the
// machinery that turns it into standardized content blocks.
//
// A Message is a complete provider message; a Chunk is a streamed fragment
// that merges with later fragments via Concat. Neither stores a block view:
// ContentBlocks resolves a Translator from DefaultRegistry by the message's
// provider tag (ResponseMetadata["model_provider"]) and translates the raw
// fields on every call. Streams must therefore merge raw chunks first and
// translate the merged chunk, never merge translated block slices.
//
// Provider translators register themselves from init, so importing a
// translator package for its side effect is enough:
//
//	import _ "github.com/hupe1980/blockmesh/translator/deepseek"
package message
