package circuit

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/deflang/go-deflang/eval"
	"github.com/deflang/go-deflang/parser"
	"github.com/holiman/uint256"
)

// Prover manages circuit compilation, setup, and proof generation for
// registered programs.
type Prover struct {
	mu       sync.RWMutex
	programs map[string]*CompiledProgram
	curve    ecc.ID
}

// CompiledProgram holds the compiled circuit and keys for one program.
type CompiledProgram struct {
	Name         string
	CS           constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
	Constraints  int
	PublicVars   int
	PrivateVars  int
}

// ProofResult contains the serialized proof and its metadata.
type ProofResult struct {
	Program     string `json:"program"`
	Value       string `json:"value"`
	Constraints int    `json:"constraints"`
	PublicVars  int    `json:"public_vars"`
	PrivateVars int    `json:"private_vars"`
	Proof       []byte `json:"proof"`
	ProofTimeMs int64  `json:"proof_time_ms"`
}

// NewProver creates a new prover instance over BN254.
func NewProver() *Prover {
	return &Prover{
		programs: make(map[string]*CompiledProgram),
		curve:    ecc.BN254,
	}
}

// RegisterProgram compiles the program's entry body to a circuit and
// runs trusted setup. A program whose inlining reaches a live call
// site again, one that would diverge under evaluation, fails here.
func (p *Prover) RegisterProgram(name string, prog *parser.Program) error {
	cs, err := frontend.Compile(p.curve.ScalarField(), r1cs.NewBuilder, &ProgramCircuit{prog: prog})
	if err != nil {
		return fmt.Errorf("circuit compilation failed: %w", err)
	}

	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	cc := &CompiledProgram{
		Name:         name,
		CS:           cs,
		ProvingKey:   pk,
		VerifyingKey: vk,
		Constraints:  cs.GetNbConstraints(),
		PublicVars:   cs.GetNbPublicVariables(),
		PrivateVars:  cs.GetNbSecretVariables(),
	}

	p.mu.Lock()
	p.programs[name] = cc
	p.mu.Unlock()

	slog.Info("Program compiled",
		"program", name,
		"constraints", cc.Constraints,
	)
	return nil
}

// Program returns a compiled program by name.
func (p *Prover) Program(name string) (*CompiledProgram, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cc, ok := p.programs[name]
	return cc, ok
}

// Programs returns all registered program names.
func (p *Prover) Programs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.programs))
	for name := range p.programs {
		names = append(names, name)
	}
	return names
}

// Prove generates a Groth16 proof that the program evaluates to the
// claimed value and verifies it locally before returning. Proving a
// value the program does not evaluate to fails.
func (p *Prover) Prove(name string, claimed eval.Value) (*ProofResult, error) {
	cc, ok := p.Program(name)
	if !ok {
		return nil, fmt.Errorf("program %q not registered", name)
	}

	value, err := fieldValue(claimed, p.curve.ScalarField())
	if err != nil {
		return nil, err
	}

	w, err := frontend.NewWitness(&ProgramCircuit{Result: value}, p.curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}

	start := time.Now()
	proof, err := groth16.Prove(cc.CS, cc.ProvingKey, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	elapsed := time.Since(start)

	public, err := w.Public()
	if err != nil {
		return nil, fmt.Errorf("public witness extraction failed: %w", err)
	}
	if err := groth16.Verify(proof, cc.VerifyingKey, public); err != nil {
		return nil, fmt.Errorf("proof verification failed: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("marshal proof: %w", err)
	}

	slog.Info("Proof generated",
		"program", name,
		"constraints", cc.Constraints,
		"elapsed", elapsed,
	)

	return &ProofResult{
		Program:     name,
		Value:       eval.Format(claimed),
		Constraints: cc.Constraints,
		PublicVars:  cc.PublicVars,
		PrivateVars: cc.PrivateVars,
		Proof:       buf.Bytes(),
		ProofTimeMs: elapsed.Milliseconds(),
	}, nil
}

// VerifyProof checks a serialized proof against the claimed value.
func (p *Prover) VerifyProof(name string, claimed eval.Value, proofBytes []byte) error {
	cc, ok := p.Program(name)
	if !ok {
		return fmt.Errorf("program %q not registered", name)
	}

	value, err := fieldValue(claimed, p.curve.ScalarField())
	if err != nil {
		return err
	}

	proof := groth16.NewProof(p.curve)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("unmarshal proof: %w", err)
	}

	public, err := frontend.NewWitness(&ProgramCircuit{Result: value}, p.curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("witness creation failed: %w", err)
	}
	return groth16.Verify(proof, cc.VerifyingKey, public)
}

// fieldValue converts an evaluation result to a witness value, checking
// that it fits the scalar field.
func fieldValue(v eval.Value, field *big.Int) (*big.Int, error) {
	switch n := v.(type) {
	case int64:
		if n < 0 {
			return nil, fmt.Errorf("circuit: negative value %d is not provable, evaluate in exact mode", n)
		}
		return big.NewInt(n), nil
	case *uint256.Int:
		b := n.ToBig()
		if b.Cmp(field) >= 0 {
			return nil, fmt.Errorf("circuit: value %s exceeds the proving field", n.Dec())
		}
		return b, nil
	}
	return nil, fmt.Errorf("circuit: value %v is not numeric", v)
}
