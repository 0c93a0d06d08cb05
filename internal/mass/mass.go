// Package mass holds the monoisotopic mass model shared by the digestion,
// indexing and scoring packages. All arithmetic is double precision.
package mass

import "fmt"

const (
	// Proton is the mass of a proton in Da.
	Proton = 1.007276
	// Water is the monoisotopic mass of H2O in Da, added once per peptide.
	Water = 18.010565
)

// Monoisotopic masses of the monosaccharides used in glycan compositions.
const (
	Hexose = 162.052823 // H (mannose, galactose)
	HexNAc = 203.079373 // N (GlcNAc, GalNAc)
	Fucose = 146.057909 // F (deoxyhexose)
	NeuAc  = 291.095417 // A (sialic acid)
)

// Residue maps the 20 standard amino acids to their monoisotopic
// residue masses (peptide bond formed, i.e. minus H2O).
var Residue = map[byte]float64{
	'A': 71.0371138,
	'C': 103.0091848,
	'D': 115.0269430,
	'E': 129.0425931,
	'F': 147.0684139,
	'G': 57.0214637,
	'H': 137.0589119,
	'I': 113.0840640,
	'K': 128.0949630,
	'L': 113.0840640,
	'M': 131.0404849,
	'N': 114.0429274,
	'P': 97.0527638,
	'Q': 128.0585775,
	'R': 156.1011110,
	'S': 87.0320284,
	'T': 101.0476785,
	'V': 99.0684139,
	'W': 186.0793129,
	'Y': 163.0633285,
}

// Peptide returns the neutral monoisotopic mass of a peptide sequence.
// The position of the first unknown residue (0-based) is reported on error.
func Peptide(seq string) (float64, error) {
	m := Water
	for i := 0; i < len(seq); i++ {
		rm, ok := Residue[seq[i]]
		if !ok {
			return 0, fmt.Errorf("unknown residue %q at position %d", seq[i], i)
		}
		m += rm
	}
	return m, nil
}

// Neutral converts an observed m/z at charge z to the neutral mass.
func Neutral(mz float64, z int) float64 {
	fz := float64(z)
	return mz*fz - fz*Proton
}

// MZ converts a neutral mass to m/z at charge z.
func MZ(neutral float64, z int) float64 {
	fz := float64(z)
	return (neutral + fz*Proton) / fz
}

// PPMError returns the relative mass error of observed vs theoretical
// in parts per million.
func PPMError(observed, theoretical float64) float64 {
	return 1e6 * (observed - theoretical) / theoretical
}
