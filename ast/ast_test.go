package ast_test

import (
	"testing"

	"github.com/lookbusy1344/ptx-parser/ast"
)

func TestStoreCacheOperatorConversion(t *testing.T) {
	cases := []struct {
		raw  ast.RawStCacheOperator
		want ast.StoreCacheOperator
	}{
		{ast.RawStWb, ast.StoreWriteback},
		{ast.RawStCg, ast.StoreL2Only},
		{ast.RawStCs, ast.StoreStreaming},
		{ast.RawStWt, ast.StoreWritethrough},
	}
	for _, c := range cases {
		if got := c.raw.Semantic(); got != c.want {
			t.Errorf("raw %v: got %v want %v", c.raw, got, c.want)
		}
	}
}

func TestLoadCacheOperatorConversion(t *testing.T) {
	cases := []struct {
		raw  ast.RawLdCacheOperator
		want ast.LoadCacheOperator
	}{
		{ast.RawLdCa, ast.LoadCached},
		{ast.RawLdCg, ast.LoadL2Only},
		{ast.RawLdCs, ast.LoadStreaming},
		{ast.RawLdLu, ast.LoadLastUse},
		{ast.RawLdCv, ast.LoadUncached},
	}
	for _, c := range cases {
		if got := c.raw.Semantic(); got != c.want {
			t.Errorf("raw %v: got %v want %v", c.raw, got, c.want)
		}
	}
}

func TestRoundingModeConversion(t *testing.T) {
	cases := []struct {
		raw  ast.RawRounding
		want ast.RoundingMode
	}{
		{ast.RawRn, ast.RoundNearestEven},
		{ast.RawRz, ast.RoundZero},
		{ast.RawRm, ast.RoundNegativeInf},
		{ast.RawRp, ast.RoundPositiveInf},
	}
	for _, c := range cases {
		if got := c.raw.Semantic(); got != c.want {
			t.Errorf("raw %v: got %v want %v", c.raw, got, c.want)
		}
	}
}

func TestInstructionInterfaceSatisfiedByAllFiveFamilies(t *testing.T) {
	var insts = []ast.Instruction{
		ast.Mov{},
		ast.Ld{},
		ast.St{},
		ast.Add{},
		ast.Ret{},
	}
	if len(insts) != 5 {
		t.Fatalf("expected 5 instruction families")
	}
}

func TestVecMemberOperandCarriesIndexInRange(t *testing.T) {
	op := ast.ParsedOperand{Kind: ast.OperandVecMember, Reg: "v", VecIndex: 3}
	if op.VecIndex < 0 || op.VecIndex > 3 {
		t.Fatalf("index out of range: %d", op.VecIndex)
	}
}
