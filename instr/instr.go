// Package instr is the instruction rule compiler (spec §4.E, "the heart"):
// a runtime interpreter (design option (c) of spec §9 — "slower but more
// portable") that reads a declarative table of opcode variants, each
// described by its ordered modifier slots and a semantic body, and
// dispatches a concrete instruction parser by longest-modifier-prefix
// match. The table in rules.go is the design artifact; this file is the
// matching engine that walks it.
package instr

import (
	"github.com/samber/lo"

	"github.com/lookbusy1344/ptx-parser/ast"
	"github.com/lookbusy1344/ptx-parser/diag"
	"github.com/lookbusy1344/ptx-parser/pstream"
	"github.com/lookbusy1344/ptx-parser/token"
)

// ModifierKind tags how a rule's modifier slot participates in variant
// matching and what value it binds (spec §4.E's binding-semantics table).
type ModifierKind int

const (
	// ModMandatoryAlt requires exactly one of Tokens to be present; binds
	// which one was matched.
	ModMandatoryAlt ModifierKind = iota
	// ModOptionalAlt matches zero or one of Tokens; binds Present plus
	// which one, if any.
	ModOptionalAlt
	// ModOptionalFlag matches zero or one occurrence of a single token;
	// binds only Present (a boolean), discarding which token (there's
	// only one).
	ModOptionalFlag
)

// ModifierSlot is one position in a variant's canonical modifier order.
type ModifierSlot struct {
	Kind   ModifierKind
	Name   string
	Tokens []token.Type
}

// Bound is what a slot resolves to after a successful match.
type Bound struct {
	Token   token.Type
	Present bool
}

// Body is the semantic action of a rule: given the bound modifiers, the
// still-open stream (positioned right after the modifier run, so the body
// parses its own operand list), the instruction's starting position, and
// the diagnostic sink, produce an AST instruction. Body returning false
// means the operand grammar didn't match this variant's shape; the
// dispatcher then rolls back and tries the next candidate.
type Body func(s *pstream.Stream, bound map[string]Bound, pos token.Position, d *diag.List) (ast.Instruction, bool)

// Variant is one rule: `opcode{.M1}{.M2}... operands => body`.
type Variant struct {
	Opcode string
	Slots  []ModifierSlot
	Body   Body
}

// requiredSlotCount is the number of ModMandatoryAlt slots in a variant —
// the "required token count" spec §4.E/§9 sorts candidates by, descending,
// as part of the longest-modifier-prefix tie-break. The rule table in
// rules.go is itself already ordered most-specific-first per opcode, which
// is sufficient given this grammar's modifiers never overlap in meaning
// across sibling variants of the same opcode, so the dispatcher does not
// re-sort at dispatch time and nothing currently calls requiredSlotCount.
func (v *Variant) requiredSlotCount() int {
	n := 0
	for _, s := range v.Slots {
		if s.Kind == ModMandatoryAlt {
			n++
		}
	}
	return n
}

// Dispatcher holds the full rule table, grouped by opcode.
type Dispatcher struct {
	byOpcode map[string][]*Variant
}

// NewDispatcher builds the dispatcher from the fixed rule table (rules.go).
func NewDispatcher() *Dispatcher {
	all := ruleTable()
	grouped := lo.GroupBy(all, func(v *Variant) string { return v.Opcode })
	return &Dispatcher{byOpcode: grouped}
}

// Opcodes lists every opcode this dispatcher recognizes, in no particular
// order.
func (d *Dispatcher) Opcodes() []string {
	return lo.Keys(d.byOpcode)
}

// Variants returns the ordered candidate list for an opcode (most specific
// first), or nil if the opcode isn't in this subset.
func (d *Dispatcher) Variants(opcode string) []*Variant {
	return d.byOpcode[opcode]
}

// matchSlots attempts to consume the modifier run for one variant's slots,
// in canonical order, from the stream. It returns the bound modifiers and
// true only if every mandatory slot matched; on failure the stream cursor
// is restored to its entry position.
func matchSlots(s *pstream.Stream, slots []ModifierSlot) (map[string]Bound, bool) {
	cp := s.Checkpoint()
	bound := make(map[string]Bound, len(slots))
	for _, slot := range slots {
		next := s.Peek()
		matched := false
		for _, want := range slot.Tokens {
			if next.Type == want {
				pstream.Any(s)
				bound[slot.Name] = Bound{Token: next.Type, Present: true}
				matched = true
				break
			}
		}
		if !matched {
			if slot.Kind == ModMandatoryAlt {
				s.Reset(cp)
				return nil, false
			}
			bound[slot.Name] = Bound{Present: false}
		}
	}
	return bound, true
}

// Parse selects a variant for opcode by longest-modifier-prefix match
// (trying the table's candidates in order — most specific first, per
// rules.go's construction — and taking the first whose modifier run and
// operand grammar both match), consumes its tokens, and runs its body.
func (d *Dispatcher) Parse(opcode string, s *pstream.Stream, pos token.Position, diags *diag.List) (ast.Instruction, bool) {
	for _, v := range d.byOpcode[opcode] {
		cp := s.Checkpoint()
		bound, ok := matchSlots(s, v.Slots)
		if !ok {
			continue
		}
		inst, ok := v.Body(s, bound, pos, diags)
		if !ok {
			s.Reset(cp)
			continue
		}
		return inst, true
	}
	return nil, false
}
