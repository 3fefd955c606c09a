// Package sentiment classifies free-text mood entries.
//
// The Scorer is a pure keyword counter over an injected Lexicon: every
// whitespace token is tested for substring containment against the positive
// and negative indicator sets, the difference is normalized into [0,1] and
// bucketed into a label and a severity level. Analyzer wraps the scorer (or a
// remote model) behind one interface so callers can switch strategies through
// configuration.
package sentiment
