package rigidbody

import (
	"encoding/binary"
	"math"

	"lukechampine.com/blake3"

	"github.com/katalvlaran/saxshist/body"
)

// Frame is one accepted step of the optimisation trajectory.
type Frame struct {
	Iteration   int
	ChiSquare   float64
	Fingerprint [32]byte
}

// TrajectoryWriter records accepted frames and fingerprints each one's
// coordinate buffer with blake3, so a configuration that was already
// recorded is recognised when it recurs. RigidBody.Step fingerprints a
// frame only after its fit has run, so recognition does not skip the
// histogram/fit pipeline.
type TrajectoryWriter struct {
	frames []Frame
	seen   map[[32]byte]int
}

// NewTrajectoryWriter builds an empty writer.
func NewTrajectoryWriter() *TrajectoryWriter {
	return &TrajectoryWriter{seen: make(map[[32]byte]int)}
}

// Fingerprint hashes every body's current atom coordinates, in body order,
// into a single 32-byte digest.
func Fingerprint(mol *body.Molecule) [32]byte {
	h := blake3.New(32, nil)
	buf := make([]byte, 8)
	for i := 0; i < mol.NumBodies(); i++ {
		b := mol.Body(i)
		for j := 0; j < b.NumAtoms(); j++ {
			a := b.Atom(j)
			binary.LittleEndian.PutUint64(buf, math.Float64bits(a.X))
			h.Write(buf)
			binary.LittleEndian.PutUint64(buf, math.Float64bits(a.Y))
			h.Write(buf)
			binary.LittleEndian.PutUint64(buf, math.Float64bits(a.Z))
			h.Write(buf)
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Record appends a new accepted frame and returns the (iteration, already
// seen) pair the caller scored a prior frame at, if this fingerprint was
// seen before — (0, false) otherwise.
func (w *TrajectoryWriter) Record(iteration int, chi2 float64, fp [32]byte) (priorIteration int, alreadySeen bool) {
	if it, ok := w.seen[fp]; ok {
		return it, true
	}
	w.seen[fp] = iteration
	w.frames = append(w.frames, Frame{Iteration: iteration, ChiSquare: chi2, Fingerprint: fp})
	return 0, false
}

// Frames returns every recorded accepted frame, in iteration order.
func (w *TrajectoryWriter) Frames() []Frame { return w.frames }
