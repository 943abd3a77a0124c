package xml

// The tag tree model and its lexer/writer are written for Roblox's XML
// dialect specifically: tag content is CDATA?, then text, then child tags, in
// that fixed order, rather than the freeform mixed content a general XML
// reader would accept.
//
// "DIFF" marks a spot where Roblox's own codec diverges from what a
// strict reading of the XML spec would do; the lexer follows Roblox here
// since the goal is reading files Roblox itself produces, not XML
// correctness.

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/robloxfile/rbxdom"
	rerrors "github.com/robloxfile/rbxdom/errors"
)

// rootTagName is the only tag name a place/model document's outermost
// element is allowed to carry.
const rootTagName = "roblox"

// minSchemaVersion is the lowest "version" attribute this lexer accepts on
// the root tag.
const minSchemaVersion = 4

// Tag represents a Roblox XML tag construct. Unlike standard XML, the content
// of a tag must consist of the following, in order:
//  1. An optional CData section.
//  2. A sequence of zero or more whitespace, which is ignored (usually newlines and indentation).
//  3. A sequence of zero or more characters indicating textual content of the tag.
//  4. A sequence of zero or more complete tags, with optional whitespace between each.
type Tag struct {
	// StartName is the name of the tag in the start tag.
	StartName string

	// EndName is the name of the tag in the end tag. If empty, this is
	// assumed to be equal to StartName.
	EndName string

	// The attributes of the tag.
	Attr []Attr

	// Empty indicates whether the tag has an empty-tag format. When encoding,
	// the tag will be written in the empty-tag format, and any content will
	// be ignored. When decoding, this value will be set if the decoded tag
	// has the empty-tag format.
	Empty bool

	// CData is a sequence of characters in a CDATA section. Only up to one
	// section is allowed, and must be the first element in the tag. A nil
	// array means that the tag does not contain a CDATA section.
	CData []byte

	// Text is the textual content of the tag.
	Text string

	// NoIndent indicates whether the tag contains prettifying whitespace,
	// which occurs between the tag's CData and Text, as well as between each
	// child tag.
	//
	// When decoding, this value is set to true if there is no whitespace of
	// any kind between the CData and Text. It will only be set if the lexer
	// has successfully detected global prefix and indent strings, but note
	// that these do not affect how the whitespace is detected.
	//
	// When encoding, this value determines whether the tag and its
	// descendants will be written with prettifying whitespace.
	NoIndent bool

	// Tags is a list of child tags within the tag.
	Tags []*Tag
}

// AttrValue returns the value of the first attribute of the given name, and
// whether or not it exists.
func (t Tag) AttrValue(name string) (value string, exists bool) {
	for _, a := range t.Attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttrValue sets the value of the first attribute of the given name, if it
// exists. If value is an empty string, then the attribute will be removed
// instead. If the attribute does not exist and value is not empty, then the
// attribute is added.
func (t *Tag) SetAttrValue(name, value string) {
	for i, a := range t.Attr {
		if a.Name == name {
			if value == "" {
				t.Attr = append(t.Attr[:i], t.Attr[i+1:]...)
			} else {
				t.Attr[i].Value = value
			}
			return
		}
	}
	if value == "" {
		return
	}
	t.Attr = append(t.Attr, Attr{Name: name, Value: value})
}

// NewRoot initializes a Tag containing values standard to a root tag.
// Optionally, Item tags can be given as arguments, which will be added to the
// root as sub-tags.
func NewRoot(items ...*Tag) *Tag {
	return &Tag{
		StartName: rootTagName,
		Attr: []Attr{
			{Name: "xmlns:xmime", Value: "http://www.w3.org/2005/05/xmlmime"},
			{Name: "xmlns:xsi", Value: "http://www.w3.org/2001/XMLSchema-instance"},
			{Name: "xsi:noNamespaceSchemaLocation", Value: "http://www.roblox.com/roblox.xsd"},
			{Name: "version", Value: strconv.Itoa(minSchemaVersion)},
		},
		Tags: items,
	}
}

// NewItem initializes an "Item" Tag representing a Roblox class.
func NewItem(class, referent string, properties ...*Tag) *Tag {
	return &Tag{
		StartName: "Item",
		Attr: []Attr{
			{Name: "class", Value: class},
			{Name: "referent", Value: referent},
		},
		Tags: []*Tag{
			{StartName: "Properties", Tags: properties},
		},
	}
}

// NewProp initializes a basic property tag representing a property in a
// Roblox class.
func NewProp(valueType, propName, value string) *Tag {
	return &Tag{
		StartName: valueType,
		Attr:      []Attr{{Name: "name", Value: propName}},
		Text:      value,
		NoIndent:  true,
	}
}

// Attr represents an attribute of a tag.
type Attr struct {
	Name  string
	Value string
}

////////////////////////////////////////////////////////////////

// Document represents an entire XML document.
type Document struct {
	// Prefix is a string that appears at the start of each line in the
	// document.
	//
	// When encoding, the prefix is added after each newline. Newlines are
	// added automatically when either Prefix or Indent is not empty.
	//
	// When decoding, this value is set when indentation is detected in the
	// document. When detected, the value becomes any leading whitespace
	// before the root tag (at the start of the file). This only sets the
	// value; no attempt is made to validate any other prettifying whitespace.
	Prefix string

	// Indent is a string that indicates one level of indentation.
	//
	// When encoding, a sequence of indents appear after the Prefix, an amount
	// equal to the current nesting depth in the markup.
	//
	// When decoding, this value is set when detecting indentation. It is set
	// to the prettifying whitespace that occurs after the first newline and
	// prefix, which occurs between the root tag's CDATA and Text data. This
	// only sets the value; no attempt is made to validate any other
	// prettifying whitespace.
	Indent string

	// Suffix is a string that appears at the very end of the document. When
	// encoding, this string is appended to the end of the file, after the
	// root tag. When decoding, this value becomes any remaining text that
	// appears after the root tag.
	Suffix string

	// ExcludeRoot determines whether the root tag should be encoded. This can
	// be combined with Prefix to write documents in-line.
	ExcludeRoot bool

	// Root is the root tag in the document.
	Root *Tag

	// Warnings is a list of non-fatal problems that have occurred. This will
	// be cleared and populated when calling either ReadFrom and WriteTo.
	// Codecs may also clear and populate this when decoding or encoding.
	Warnings rerrors.Errors
}

// A SyntaxError reports a lexical problem in the XML input stream: malformed
// tag or attribute syntax, an unterminated CDATA section, and the like.
// Higher-level document structure errors (wrong root tag, bad version) use
// rbxfile's own error types instead, since those are meaningful to callers
// outside this package.
type SyntaxError struct {
	Msg  string
	Line int
}

func (e *SyntaxError) Error() string {
	return "XML syntax error on line " + strconv.Itoa(e.Line) + ": " + e.Msg
}

// lexer scans a byte stream into a tree of Tags. It tracks at most one
// pushed-back byte run (nextByte) so that a tentative read - such as probing
// for a "<![CDATA[" opener - can be undone without a dedicated peek buffer.
type lexer struct {
	r        io.ByteReader
	buf      bytes.Buffer
	nextByte []byte
	doc      *Document
	n        int64
	err      error
	line     int
}

// syntaxError builds a SyntaxError at the lexer's current line and records
// it as the sticky error.
func (lx *lexer) syntaxError(msg string) error {
	lx.err = &SyntaxError{Msg: msg, Line: lx.line}
	return lx.err
}

func (lx *lexer) ignoreStartTag(err error) int {
	// Treat error as warning.
	lx.doc.Warnings = append(lx.doc.Warnings, err)
	// Read until end of start tag.
	for {
		b, ok := lx.mustgetc()
		if !ok {
			return -1
		}
		if b == '>' {
			break
		}
	}
	return 0
}

// decodeStartTag reads "<name attr=\"val\" ...>" or its self-closing form.
//
//DIFF: Start tag parser has unexpected behavior that is difficult to
//pin-point.
func (lx *lexer) decodeStartTag(tag *Tag) int {
	b, ok := lx.getc()
	if !ok {
		return -1
	}

	if b != '<' {
		lx.syntaxError("expected start tag")
		return -1
	}

	if b, ok = lx.mustgetc(); !ok {
		return -1
	}
	if b == '/' {
		// </: End element; invalid
		lx.syntaxError("unexpected end tag")
		return -1
	}

	// Must be an open element like <a href="foo">
	lx.ungetc(b)

	if tag.StartName, ok = lx.name(nameTag); !ok {
		return lx.ignoreStartTag(lx.syntaxError("expected element name after <"))
	}

	tag.Attr = make([]Attr, 0, 4)
	for {
		lx.space()
		if b, ok = lx.mustgetc(); !ok {
			return -1
		}
		if b == '/' {
			tag.Empty = true
			if b, ok = lx.mustgetc(); !ok {
				return -1
			}
			if b != '>' {
				return lx.ignoreStartTag(lx.syntaxError("expected /> in element"))
			}
			break
		}
		if b == '>' {
			break
		}
		lx.ungetc(b)

		n := len(tag.Attr)
		if n >= cap(tag.Attr) {
			nattr := make([]Attr, n, 2*cap(tag.Attr))
			copy(nattr, tag.Attr)
			tag.Attr = nattr
		}
		tag.Attr = tag.Attr[0 : n+1]
		a := &tag.Attr[n]
		if a.Name, ok = lx.name(nameAttr); !ok {
			return lx.ignoreStartTag(lx.syntaxError("expected attribute name in element"))
		}
		lx.space()
		if b, ok = lx.mustgetc(); !ok {
			return -1
		}
		if b != '=' {
			return lx.ignoreStartTag(lx.syntaxError("attribute name without = in element"))
		}
		lx.space()
		data := lx.attrval()
		if data == nil {
			return -1
		}
		a.Value = string(data)
	}
	return 1
}

func (lx *lexer) decodeCData(tag *Tag) bool {
	tag.CData = nil

	// attempt to read CData opener
	const opener = "<![CDATA["
	for i := 0; i < len(opener); i++ {
		b, ok := lx.getc()
		if !ok {
			return false
		}
		if b != opener[i] {
			// optional; unget characters and return ok status
			lx.ungetc(b)
			for j := i - 1; j >= 0; j-- {
				lx.ungetc(opener[j])
			}
			return true
		}
	}

	// Have <![CDATA[.  Read text until ]]>.
	tag.CData = lx.text(-1, true)
	return tag.CData != nil
}

func (lx *lexer) decodeText(tag *Tag) bool {
	text := lx.text(-1, false)
	if text == nil {
		tag.Text = ""
		return false
	}
	tag.Text = string(text)
	return true
}

func (lx *lexer) decodeEndTag(tag *Tag) bool {
	b, ok := lx.getc()
	if !ok {
		return false
	}

	if b != '<' {
		lx.syntaxError("expected start tag")
		return false
	}

	if b, ok = lx.mustgetc(); !ok {
		return false
	}
	if b != '/' {
		lx.syntaxError("expected end tag")
		return false
	}

	// </: End element
	if tag.EndName, ok = lx.name(nameTag); !ok {
		if lx.err == nil {
			lx.syntaxError("expected element name after </")
		}
		return false
	}
	lx.space()
	if b, ok = lx.mustgetc(); !ok {
		return false
	}
	if b != '>' {
		lx.syntaxError("invalid characters between </" + tag.EndName + " and >")
		return false
	}
	return true
}

// checkRootTag validates the constraints that only apply to the outermost
// tag: its name must be "roblox" and it must carry a supported version
// attribute. These use rbxfile's document-level error types rather than
// SyntaxError, since a caller further up the stack cares about "wrong
// version", not "line 1 column 9".
func (lx *lexer) checkRootTag(tag *Tag) error {
	if tag.StartName != rootTagName {
		lx.err = rbxfile.ErrUnexpectedXmlEvent{State: "root", Kind: "tag:" + tag.StartName}
		return lx.err
	}
	v, ok := tag.AttrValue("version")
	if !ok {
		//DIFF: returns success, but no data is read
		lx.err = rbxfile.ErrWrongDocVersion{Got: ""}
		return lx.err
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < minSchemaVersion {
		lx.err = rbxfile.ErrWrongDocVersion{Got: v}
		return lx.err
	}
	return nil
}

// detectIndent inspects the whitespace following the root tag's CDATA and,
// if it looks like prettifying whitespace (contains a newline and repeats
// the already-detected Prefix), records the per-level Indent string.
func (lx *lexer) detectIndent() {
	ind := lx.readSpace()
	// Must contain a newline, otherwise it wouldn't be indentation.
	i := bytes.IndexByte(ind, '\n')
	if i < 0 {
		return
	}
	if !bytes.HasPrefix(ind[i+1:], []byte(lx.doc.Prefix)) {
		// If line does not begin with the prefix detected previously,
		// then assume that the whitespace is badly formed, and cease
		// detection.
		lx.doc.Prefix = ""
		return
	}
	// Found newline and prefix, all of the remaining whitespace
	// indicates one level of indentation.
	lx.doc.Indent = string(ind[i+1+len(lx.doc.Prefix):])
}

func (lx *lexer) decodeTag(root bool) (tag *Tag, err error) {
	if lx.err != nil {
		return nil, lx.err
	}

	tag = new(Tag)
	noindent := false
	nocontent := true

	if root {
		// Attempt to detect prefix
		if p := lx.readSpace(); len(p) > 0 {
			// Store it for later. Prefix will be unset if no indentation is
			// detected.
			lx.doc.Prefix = string(p)
		}
	}

	startTagState := lx.decodeStartTag(tag)
	if startTagState < 0 {
		return nil, lx.err
	}

	if root {
		if err := lx.checkRootTag(tag); err != nil {
			return nil, err
		}
	}

	if tag.Empty {
		if startTagState == 0 {
			return nil, nil
		}
		return tag, nil
	}

	if !lx.decodeCData(tag) {
		return nil, lx.err
	}
	if len(tag.CData) > 0 {
		nocontent = false
	}

	// prettifying whitespace
	if root {
		// Attempt to detect indentation by looking at the (usually ignored)
		// whitespace under the root tag after the CDATA.
		lx.detectIndent()
	} else if lx.doc.Prefix != "" || lx.doc.Indent != "" {
		if len(lx.readSpace()) == 0 {
			noindent = true
		}
	} else {
		lx.space()
	}

	if !lx.decodeText(tag) {
		return nil, lx.err
	}
	if len(tag.Text) > 0 {
		nocontent = false
	}

	for {
		// prettifying whitespace between tags
		lx.space()

		b, ok := lx.getc()
		if !ok {
			return nil, lx.err
		}

		if b != '<' {
			lx.syntaxError("expected tag")
			return nil, lx.err
		}

		if b, ok = lx.mustgetc(); !ok {
			return nil, lx.err
		}
		if b == '/' {
			// </: End element
			lx.ungetc('/')
			lx.ungetc('<')

			if !lx.decodeEndTag(tag) {
				return nil, lx.err
			}
			break
		}

		// child tag
		lx.ungetc(b)
		lx.ungetc('<')

		subtag, err := lx.decodeTag(false)
		if err != nil {
			return nil, err
		}
		if subtag != nil {
			tag.Tags = append(tag.Tags, subtag)
		}
	}
	if len(tag.Tags) > 0 {
		nocontent = false
	}

	if !nocontent {
		// Do not set NoIndent if the tag is empty.
		tag.NoIndent = noindent
	}

	if startTagState == 0 {
		// Ignore the entire tag.
		return nil, nil
	}

	return tag, nil
}

func (lx *lexer) attrval() []byte {
	b, ok := lx.mustgetc()
	if !ok {
		return nil
	}
	// Handle quoted attribute values
	if b == '"' {
		return lx.text(int(b), false)
	}

	lx.syntaxError("unquoted or missing attribute value in element")
	return nil
}

func (lx *lexer) readSpace() []byte {
	lx.buf.Reset()
	for {
		b, ok := lx.getc()
		if !ok {
			return lx.buf.Bytes()
		}
		if !isSpace(b) {
			lx.ungetc(b)
			return lx.buf.Bytes()
		}
		lx.buf.WriteByte(b)
	}
}

// space skips spaces if any.
func (lx *lexer) space() {
	for {
		b, ok := lx.getc()
		if !ok {
			return
		}
		if !isSpace(b) {
			lx.ungetc(b)
			return
		}
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\r', '\n', '\t', '\f':
		return true
	default:
		return false
	}
}

// getc reads a single byte, maintaining the line count. If there is no byte
// to read, it reports ok == false and leaves the error in lx.err.
func (lx *lexer) getc() (b byte, ok bool) {
	if lx.err != nil {
		return 0, false
	}

	if len(lx.nextByte) > 0 {
		b, lx.nextByte = lx.nextByte[len(lx.nextByte)-1], lx.nextByte[:len(lx.nextByte)-1]
	} else {
		b, lx.err = lx.r.ReadByte()
		if lx.err != nil {
			return 0, false
		}
		lx.n++
	}
	if b == '\n' {
		lx.line++
	}

	return b, true
}

// mustgetc reads a single byte, turning a plain EOF into a syntax error
// since the caller expected more input.
func (lx *lexer) mustgetc() (b byte, ok bool) {
	if b, ok = lx.getc(); !ok {
		if lx.err == io.EOF {
			lx.syntaxError("unexpected EOF")
		}
	}
	return
}

// ungetc pushes a byte back onto the lexer, to be returned by the next
// getc/mustgetc call.
func (lx *lexer) ungetc(b byte) {
	if b == '\n' {
		lx.line--
	}
	lx.nextByte = append(lx.nextByte, b)
}

var entity = map[string]int{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

// text reads a plain text section (XML calls it character data). If quote >=
// 0, the lexer is inside a quoted attribute value and stops at the matching
// quote byte. If cdata is true, the lexer is inside a "<![CDATA[" section and
// stops at "]]>". On failure it returns nil and leaves the error in lx.err.
func (lx *lexer) text(quote int, cdata bool) []byte {
	var b0, b1 byte
	var trunc int
	lx.buf.Reset()
Input:
	for {
		b, ok := lx.getc()
		if !ok {
			if cdata {
				if lx.err == io.EOF {
					lx.syntaxError("unexpected EOF in CDATA section")
				}
				return nil
			}
			break Input
		}

		// <![CDATA[ section ends with ]]>.
		// It is an error for ]]> to appear in ordinary text.
		if b0 == ']' && b1 == ']' && b == '>' {
			if cdata {
				trunc = 2
				break Input
			}
			lx.syntaxError("unexpected ]]> in character data")
			return nil
		}

		// Stop reading text if we see a <.
		if b == '<' && !cdata {
			if quote >= 0 {
				lx.syntaxError("unescaped < in attribute value")
				return nil
			}
			lx.ungetc('<')
			break Input
		}
		if quote >= 0 && b == byte(quote) {
			break Input
		}
		if b == '&' && !cdata {
			if !lx.decodeEntityRef(&b0, &b1) {
				if lx.err != nil {
					return nil
				}
			}
			continue Input
		}

		// We must rewrite unescaped \r and \r\n into \n.
		if b == '\r' {
			lx.buf.WriteByte('\n')
		} else if b1 == '\r' && b == '\n' {
			// Skip \r\n--we already wrote \n.
		} else {
			lx.buf.WriteByte(b)
		}

		b0, b1 = b1, b
	}
	buf := lx.buf.Bytes()
	buf = buf[0 : len(buf)-trunc]

	data := make([]byte, len(buf))
	copy(data, buf)

	return data
}

// decodeEntityRef reads an escaped character expression starting just after
// an '&' up to the terminating semicolon, and appends its resolved text (or,
// failing resolution, the literal bytes read) to lx.buf. XML in all its
// glory allows a document to define and use its own character names with
// <!ENTITY ...> directives; parsers are required to recognize lt, gt, amp,
// apos, and quot even if they have not been declared. b0/b1 are reset since
// the entity breaks any run of recently read bytes the caller was tracking.
//
//DIFF: incomplete entity (no semicolon) *inserts* semicolon at end of text
func (lx *lexer) decodeEntityRef(b0, b1 *byte) bool {
	before := lx.buf.Len()
	lx.buf.WriteByte('&')
	var text string
	var haveText bool

	b, ok := lx.mustgetc()
	if !ok {
		return false
	}

	if b == '#' {
		text, haveText, ok = lx.decodeNumericEntity(b)
	} else {
		lx.ungetc(b)
		text, haveText, ok = lx.decodeNamedEntity(before)
	}
	if !ok {
		return false
	}

	if haveText {
		lx.buf.Truncate(before)
		lx.buf.WriteString(text)
	}
	*b0, *b1 = 0, 0
	return true
}

// decodeNumericEntity reads "#NNN;" or "#xHH;" after the leading '&' and '#'
// have already been consumed (hashByte is the '#' itself, already on the
// line for bookkeeping purposes). A malformed or out-of-range reference
// leaves the raw bytes in lx.buf instead of resolved text.
//
//DIFF: characters between valid characters and semicolon are ignored.
//DIFF: numeric entity is parsed as int32 and converted to a byte, so any
//code point above 255 fails to resolve.
func (lx *lexer) decodeNumericEntity(hashByte byte) (text string, haveText, ok bool) {
	lx.buf.WriteByte(hashByte)
	b, ok := lx.mustgetc()
	if !ok {
		return "", false, false
	}
	base := 10
	if b == 'x' {
		//DIFF: ERROR: unable to parse hexidecimal character code
		base = 16
		lx.buf.WriteByte(b)
		if b, ok = lx.mustgetc(); !ok {
			return "", false, false
		}
	}
	start := lx.buf.Len()
	for '0' <= b && b <= '9' ||
		base == 16 && 'a' <= b && b <= 'f' ||
		base == 16 && 'A' <= b && b <= 'F' {
		lx.buf.WriteByte(b)
		if b, ok = lx.mustgetc(); !ok {
			return "", false, false
		}
	}
	if b != ';' {
		//DIFF: if numeric entity does not end with a semicolon, then the
		//remaining text is truncated. Note: this may be a sign that the text
		//is parsed out first, then entities are converted afterwards.
		lx.ungetc(b)
		return "", false, true
	}
	s := string(lx.buf.Bytes()[start:])
	lx.buf.WriteByte(';')
	n, err := strconv.ParseUint(s, base, 64)
	if err == nil && n <= 255 {
		return string([]byte{byte(n)}), true, true
	}
	return "", false, true
}

// decodeNamedEntity reads a bare name ("lt", "amp", ...) up to the
// terminating semicolon and resolves it against the built-in entity table.
// before is the offset in lx.buf just after the leading '&' was written.
func (lx *lexer) decodeNamedEntity(before int) (text string, haveText, ok bool) {
	if !lx.readName(nameEntity) {
		if lx.err != nil {
			return "", false, false
		}
	}
	b, ok := lx.mustgetc()
	if !ok {
		return "", false, false
	}
	if b != ';' {
		lx.ungetc(b)
		return "", false, true
	}
	name := lx.buf.Bytes()[before+1:]
	lx.buf.WriteByte(';')
	if r, found := entity[string(name)]; found {
		return string(rune(r)), true, true
	}
	return "", false, true
}

// name reads /first(first|second)*/ and returns it without touching lx.err
// if the name is simply missing (unless an unexpected EOF is hit) - the
// caller is expected to provide better context for a missing name.
func (lx *lexer) name(typ int) (s string, ok bool) {
	lx.buf.Reset()
	if !lx.readName(typ) {
		return "", false
	}
	return lx.buf.String(), true
}

// readName reads a name and appends its bytes to lx.buf. The name is
// delimited by any single-byte character not valid in names. All multi-byte
// characters are accepted; the caller must check their validity.
func (lx *lexer) readName(typ int) (ok bool) {
	var b byte
	if b, ok = lx.mustgetc(); !ok {
		return
	}
	if !isNameByte(b, typ) {
		lx.ungetc(b)
		return false
	}
	lx.buf.WriteByte(b)

	for {
		if b, ok = lx.mustgetc(); !ok {
			return
		}
		if !isNameByte(b, typ) {
			lx.ungetc(b)
			break
		}
		lx.buf.WriteByte(b)
	}
	return true
}

const (
	nameTag = iota
	nameAttr
	nameEntity
)

func isNameByte(c byte, t int) bool {
	if '!' <= c && c <= '~' && c != '>' {
		switch t {
		case nameAttr:
			return c != '='
		case nameEntity:
			return c != ';'
		}
		return true
	}
	return false
}

// ReadFrom decodes a document tree from r, resetting the Document's
// auto-detected Prefix/Indent/Warnings fields first.
func (doc *Document) ReadFrom(r io.Reader) (n int64, err error) {
	if r == nil {
		return 0, errors.New("xml: reader is nil")
	}

	doc.Prefix = ""
	doc.Indent = ""
	doc.Warnings = doc.Warnings[:0]

	lx := &lexer{
		doc:      doc,
		nextByte: make([]byte, 0, 9),
		line:     1,
	}
	if rb, ok := r.(io.ByteReader); ok {
		lx.r = rb
	} else {
		lx.r = bufio.NewReader(r)
	}

	doc.Root, err = lx.decodeTag(true)
	if err != nil {
		return lx.n, err
	}

	lx.buf.Reset()
	for {
		b, ok := lx.getc()
		if !ok {
			break
		}
		lx.buf.WriteByte(b)
	}
	doc.Suffix = lx.buf.String()

	return lx.n, nil
}

// writer renders a tag tree back into Roblox's XML dialect, restoring
// Prefix/Indent-driven pretty-printing as it walks.
type writer struct {
	*bufio.Writer
	d          *Document
	putNewline bool
	depth      int
	indentedIn bool
	n          int64
	err        error
}

func (w *writer) encodeCData(tag *Tag) bool {
	if tag.CData == nil {
		return true
	}

	w.writeString("<![CDATA[")
	w.write(tag.CData)
	w.writeString("]]>")
	return w.flush()
}

func (w *writer) encodeText(tag *Tag) bool {
	w.escapeString(tag.Text, true)
	return w.flush()
}

func (w *writer) checkName(name string, typ int) bool {
	if len(name) == 0 {
		return false
	}
	for _, c := range []byte(name) {
		if !isNameByte(c, typ) {
			return false
		}
	}
	return true
}

func (w *writer) encodeTag(tag *Tag, noTags bool, noindent bool) int {
	if w.err != nil {
		return -1
	}

	endName := tag.EndName

	if !noTags {
		if !w.checkName(tag.StartName, nameTag) {
			w.d.Warnings = append(w.d.Warnings, errors.New("ignored tag with malformed start name `"+tag.StartName+"`"))
			return 0
		}

		if !w.checkName(endName, nameTag) && endName != "" {
			endName = tag.StartName
			w.d.Warnings = append(w.d.Warnings, errors.New("tag with malformed end name `"+tag.EndName+"`, used start name instead"))
		}

		w.writeByte('<')
		w.writeString(tag.StartName)

		for _, attr := range tag.Attr {
			if !w.checkName(attr.Name, nameAttr) {
				w.d.Warnings = append(w.d.Warnings, errors.New("ignored attribute with malformed name `"+attr.Name+"`"))
				continue
			}
			w.writeByte(' ')
			w.writeString(attr.Name)
			w.writeByte('=')
			w.writeByte('"')
			w.escapeString(attr.Value, false)
			w.writeByte('"')
		}

		if tag.Empty {
			w.writeByte('/')
			w.writeByte('>')
			if !w.flush() {
				return -1
			}
			return 1
		}

		w.writeByte('>')
		if !w.flush() {
			return -1
		}
	}

	if !w.encodeCData(tag) {
		return -1
	}

	if !noindent && !tag.NoIndent {
		if len(tag.Tags) > 0 {
			if noTags {
				w.writeIndent(0, true)
			} else {
				w.writeIndent(1, false)
			}
		}
	}

	if !w.encodeText(tag) {
		return -1
	}

	for i, sub := range tag.Tags {
		r := w.encodeTag(sub, false, noindent || tag.NoIndent)
		if r < 0 {
			return -1
		}
		if r == 0 {
			continue
		}
		if !noindent && !tag.NoIndent {
			if i == len(tag.Tags)-1 {
				if noTags {
					w.writeIndent(0, true)
				} else {
					w.writeIndent(-1, false)
				}
			} else {
				w.writeIndent(0, false)
			}
		}
	}

	if !noTags {
		w.writeByte('<')
		w.writeByte('/')
		if endName == "" {
			w.writeString(tag.StartName)
		} else {
			w.writeString(endName)
		}
		w.writeByte('>')

		if !w.flush() {
			return -1
		}
	}

	return 1
}

func (w *writer) write(p []byte) bool {
	if w.err != nil {
		return false
	}
	n, err := w.Write(p)
	w.n += int64(n)
	if err != nil {
		w.err = err
		return false
	}
	return true
}

func (w *writer) writeByte(b byte) bool {
	if w.err != nil {
		return false
	}
	if err := w.WriteByte(b); err != nil {
		w.err = err
		return false
	}
	w.n++
	return true
}

func (w *writer) writeString(s string) bool {
	if w.err != nil {
		return false
	}
	n, err := w.WriteString(s)
	w.n += int64(n)
	if err != nil {
		w.err = err
		return false
	}
	return true
}

func (w *writer) flush() bool {
	if w.err != nil {
		return false
	}
	if err := w.Writer.Flush(); err != nil {
		w.err = err
		return false
	}
	return true
}

func (w *writer) writeIndent(depthDelta int, notag bool) {
	if len(w.d.Prefix) == 0 && len(w.d.Indent) == 0 {
		return
	}
	if depthDelta < 0 {
		w.depth--
	} else if depthDelta > 0 {
		w.depth++
	}
	if notag {
		return
	}
	w.WriteByte('\n')
	if len(w.d.Prefix) > 0 {
		w.WriteString(w.d.Prefix)
	}
	for i := 0; i < w.depth; i++ {
		w.WriteString(w.d.Indent)
	}
}

var (
	escQuot = []byte("&quot;")
	escApos = []byte("&apos;")
	escAmp  = []byte("&amp;")
	escLt   = []byte("&lt;")
	escGt   = []byte("&gt;")
)

// escapeString writes the properly escaped XML equivalent of the plain text
// data s. If escapeLead is true, then leading whitespace will be escaped.
func (w *writer) escapeString(s string, escapeLead bool) {
	var esc []byte
	last := 0
	bs := []byte(s)
	for i := 0; i < len(bs); {
		esc = nil
		b := bs[i]
		i++

		if escapeLead {
			if isSpace(b) {
				goto numbered
			}
			escapeLead = false
		}

		switch b {
		case '"':
			esc = escQuot
		case '\'':
			esc = escApos
		case '&':
			esc = escAmp
		case '<':
			esc = escLt
		case '>':
			esc = escGt
		default:
			if ' ' <= b && b <= '~' || b == '\n' || b == '\r' {
				// literal
				continue
			}
			goto numbered
		}

	numbered:
		if esc == nil {
			n := []byte(strconv.FormatInt(int64(b), 10))
			esc = make([]byte, len(n)+3)
			esc[0] = '&'
			esc[1] = '#'
			copy(esc[2:], n)
			esc[len(esc)-1] = ';'
		}

		w.writeString(s[last : i-1])
		w.write(esc)
		last = i
	}
	w.writeString(s[last:])
}

// WriteTo encodes the Document as bytes to w, resetting Warnings first.
func (d *Document) WriteTo(out io.Writer) (n int64, err error) {
	d.Warnings = d.Warnings[:0]

	w := &writer{Writer: bufio.NewWriter(out), d: d}

	w.writeString(w.d.Prefix)

	if r := w.encodeTag(d.Root, d.ExcludeRoot, d.Root.NoIndent); r < 0 {
		return w.n, w.err
	}

	w.writeString(w.d.Suffix)
	w.flush()
	return w.n, w.err
}
