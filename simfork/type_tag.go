// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simfork

import (
	"fmt"
	"strings"
)

// primitive type names accepted in type arguments.
var primitives = map[string]bool{
	"bool": true, "u8": true, "u16": true, "u32": true, "u64": true,
	"u128": true, "u256": true, "address": true, "signer": true,
}

// TypeTag is a type argument. Exactly one of the fields is set.
type TypeTag struct {
	Primitive string
	Vector    *TypeTag
	Struct    *StructTag
}

func (t TypeTag) String() string {
	switch {
	case t.Vector != nil:
		return "vector<" + t.Vector.String() + ">"
	case t.Struct != nil:
		return t.Struct.String()
	default:
		return t.Primitive
	}
}

// StructTag identifies a resource type, e.g. 0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>.
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// String returns the canonical form. The module address is printed in short form when special.
func (s StructTag) String() string {
	var b strings.Builder
	b.WriteString(s.Address.String())
	b.WriteString("::")
	b.WriteString(s.Module)
	b.WriteString("::")
	b.WriteString(s.Name)
	if len(s.TypeParams) > 0 {
		b.WriteByte('<')
		for i, p := range s.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s StructTag) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StructTag) UnmarshalText(text []byte) error {
	tag, err := ParseStructTag(string(text))
	if err != nil {
		return err
	}
	*s = tag
	return nil
}

// ParseStructTag parses the text form of a struct tag.
func ParseStructTag(s string) (StructTag, error) {
	p := &tagParser{src: s}
	tag, err := p.structTag()
	if err != nil {
		return StructTag{}, fmt.Errorf("invalid struct tag %q: %w", s, err)
	}
	if p.skipSpace(); p.pos != len(p.src) {
		return StructTag{}, fmt.Errorf("invalid struct tag %q: trailing characters", s)
	}
	return tag, nil
}

// MustParseStructTag parses the struct tag and panics on error.
func MustParseStructTag(s string) StructTag {
	tag, err := ParseStructTag(s)
	if err != nil {
		panic(err)
	}
	return tag
}

// ParseTypeTag parses a type argument.
func ParseTypeTag(s string) (TypeTag, error) {
	p := &tagParser{src: s}
	tag, err := p.typeTag()
	if err != nil {
		return TypeTag{}, fmt.Errorf("invalid type tag %q: %w", s, err)
	}
	if p.skipSpace(); p.pos != len(p.src) {
		return TypeTag{}, fmt.Errorf("invalid type tag %q: trailing characters", s)
	}
	return tag, nil
}

type tagParser struct {
	src string
	pos int
}

func (p *tagParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *tagParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return "", fmt.Errorf("expected identifier at %d", start)
	}
	return p.src[start:p.pos], nil
}

func (p *tagParser) expect(tok string) error {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		return fmt.Errorf("expected %q at %d", tok, p.pos)
	}
	p.pos += len(tok)
	return nil
}

func (p *tagParser) peek(tok string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *tagParser) structTag() (StructTag, error) {
	var tag StructTag
	addr, err := p.ident()
	if err != nil {
		return tag, err
	}
	if tag.Address, err = ParseAddress(addr); err != nil {
		return tag, err
	}
	if err := p.expect("::"); err != nil {
		return tag, err
	}
	if tag.Module, err = p.ident(); err != nil {
		return tag, err
	}
	if err := p.expect("::"); err != nil {
		return tag, err
	}
	if tag.Name, err = p.ident(); err != nil {
		return tag, err
	}
	if p.peek("<") {
		p.pos++
		for {
			param, err := p.typeTag()
			if err != nil {
				return tag, err
			}
			tag.TypeParams = append(tag.TypeParams, param)
			if p.peek(",") {
				p.pos++
				continue
			}
			if err := p.expect(">"); err != nil {
				return tag, err
			}
			break
		}
	}
	return tag, nil
}

func (p *tagParser) typeTag() (TypeTag, error) {
	p.skipSpace()
	if p.peek("0x") {
		st, err := p.structTag()
		if err != nil {
			return TypeTag{}, err
		}
		return TypeTag{Struct: &st}, nil
	}
	name, err := p.ident()
	if err != nil {
		return TypeTag{}, err
	}
	if name == "vector" {
		if err := p.expect("<"); err != nil {
			return TypeTag{}, err
		}
		elem, err := p.typeTag()
		if err != nil {
			return TypeTag{}, err
		}
		if err := p.expect(">"); err != nil {
			return TypeTag{}, err
		}
		return TypeTag{Vector: &elem}, nil
	}
	if !primitives[name] {
		return TypeTag{}, fmt.Errorf("unknown type %q", name)
	}
	return TypeTag{Primitive: name}, nil
}
