/*
Package minim implements a streaming lexical scanner for XML-like markup.

It turns a lazy sequence of byte chunks (as might arrive from a network
socket or a file read loop) into a stream of typed lexical tokens: tags,
attributes, processing instructions, comments, CDATA sections, character
data and whitespace. A second layer, NamespaceScanner, recognises xmlns
and xmlns:prefix attributes on a tag and lifts namespace-binding events so
that they appear before the tag that declares them.

This package is a lexical scanner, not a validating parser. It does not
resolve entity references, validate DTDs, enforce tag nesting, decode
character references, interpret the XML declaration's encoding
pseudo-attribute, or normalise attribute values. It emits tokens faithfully
in document order, including for malformed input, recovering locally where
it can and surfacing a fatal error otherwise.

The scanner is pull-driven and single-threaded: the caller drives one
token at a time by calling Scanner.Next, and only materialises the token's
text by calling Scanner.Text when it actually needs it. This two-phase
protocol lets callers that discard most tokens (for example, a tool that
only counts start tags) avoid allocating for the tokens they throw away.
*/
package minim
