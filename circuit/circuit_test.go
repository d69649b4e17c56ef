package circuit

import (
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/deflang/go-deflang/eval"
	"github.com/deflang/go-deflang/parser"
	"github.com/holiman/uint256"
)

func mustParse(t *testing.T, source string) *parser.Program {
	t.Helper()
	prog, err := parser.Parse(source, nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return prog
}

func TestCompileProgramCircuit(t *testing.T) {
	prog := mustParse(t, "DEF SQ x { x*x } ;\nDEF MAIN { SQ(SQ(2))+1 } ;\n")

	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &ProgramCircuit{prog: prog})
	if err != nil {
		t.Fatalf("circuit compilation failed: %v", err)
	}
	if cs.GetNbConstraints() == 0 {
		t.Error("expected at least one constraint")
	}

	t.Logf("Circuit compiled successfully!")
	t.Logf("  Constraints: %d", cs.GetNbConstraints())
	t.Logf("  Public inputs: %d", cs.GetNbPublicVariables())
	t.Logf("  Private inputs: %d", cs.GetNbSecretVariables())
}

func TestProveAndVerify(t *testing.T) {
	prog := mustParse(t, "DEF SQ x { x*x } ;\nDEF MAIN { SQ(SQ(2))+1 } ;\n")

	value, err := eval.Run(prog, &eval.Options{Exact: true})
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	prover := NewProver()
	if err := prover.RegisterProgram("square", prog); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := prover.Prove("square", value)
	if err != nil {
		t.Fatalf("prove failed: %v", err)
	}
	if res.Value != "17" {
		t.Errorf("expected value 17, got %s", res.Value)
	}
	if res.Constraints == 0 {
		t.Error("expected constraints in compiled circuit")
	}
	if len(res.Proof) == 0 {
		t.Error("expected serialized proof bytes")
	}
	t.Logf("Proof generated: %d constraints, %d proof bytes", res.Constraints, len(res.Proof))

	if err := prover.VerifyProof("square", value, res.Proof); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	t.Logf("Proof VERIFIED!")
}

func TestProveWrongValueFails(t *testing.T) {
	prog := mustParse(t, "DEF MAIN { 2+3 } ;\n")

	prover := NewProver()
	if err := prover.RegisterProgram("sum", prog); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := prover.Prove("sum", int64(6))
	if err != nil {
		t.Logf("Proof correctly failed for wrong value: %v", err)
		return
	}
	t.Error("Expected proof to fail for wrong value, but it succeeded")
}

func TestVerifyWrongValueFails(t *testing.T) {
	prog := mustParse(t, "DEF MAIN { 2+3 } ;\n")

	prover := NewProver()
	if err := prover.RegisterProgram("sum", prog); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	res, err := prover.Prove("sum", int64(5))
	if err != nil {
		t.Fatalf("prove failed: %v", err)
	}

	if err := prover.VerifyProof("sum", int64(6), res.Proof); err == nil {
		t.Error("Expected verification to fail for wrong value")
	}
}

func TestRegisterDivergingProgram(t *testing.T) {
	prog := mustParse(t, "DEF LOOP { LOOP() } ;\nDEF MAIN { LOOP() } ;\n")

	prover := NewProver()
	err := prover.RegisterProgram("loop", prog)
	if err == nil {
		t.Fatal("Expected compilation to fail for a recursive program")
	}
	if !strings.Contains(err.Error(), "recursive call") {
		t.Errorf("Expected recursive call error, got: %v", err)
	}
}

func TestProveValueExceedsField(t *testing.T) {
	prog := mustParse(t, "DEF MAIN { 1 } ;\n")

	prover := NewProver()
	if err := prover.RegisterProgram("one", prog); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	huge := new(uint256.Int).SetAllOne()
	_, err := prover.Prove("one", huge)
	if err == nil {
		t.Fatal("Expected prove to reject a value above the field modulus")
	}
	if !strings.Contains(err.Error(), "exceeds the proving field") {
		t.Errorf("Expected field bound error, got: %v", err)
	}
}

func TestProveUnregisteredProgram(t *testing.T) {
	prover := NewProver()
	if _, err := prover.Prove("missing", int64(1)); err == nil {
		t.Error("Expected error for unregistered program")
	}
}

func TestProverPrograms(t *testing.T) {
	prover := NewProver()
	if err := prover.RegisterProgram("a", mustParse(t, "DEF MAIN { 1 } ;\n")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := prover.RegisterProgram("b", mustParse(t, "DEF MAIN { 2 } ;\n")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if len(prover.Programs()) != 2 {
		t.Errorf("expected 2 registered programs, got %d", len(prover.Programs()))
	}
	if _, ok := prover.Program("a"); !ok {
		t.Error("expected program a to be registered")
	}
	if _, ok := prover.Program("c"); ok {
		t.Error("did not expect program c to be registered")
	}
}

func TestFieldValue(t *testing.T) {
	field := ecc.BN254.ScalarField()

	v, err := fieldValue(int64(42), field)
	if err != nil {
		t.Fatalf("fieldValue failed: %v", err)
	}
	if v.Int64() != 42 {
		t.Errorf("expected 42, got %s", v)
	}

	v, err = fieldValue(uint256.NewInt(7), field)
	if err != nil {
		t.Fatalf("fieldValue failed: %v", err)
	}
	if v.Int64() != 7 {
		t.Errorf("expected 7, got %s", v)
	}

	if _, err := fieldValue(int64(-1), field); err == nil {
		t.Error("Expected negative value to be rejected")
	}
	if _, err := fieldValue("nope", field); err == nil {
		t.Error("Expected non-numeric value to be rejected")
	}
}
