package query

import "strings"

var aminoAcidCodes = map[string]byte{
	"A": 'A', "ALA": 'A',
	"R": 'R', "ARG": 'R',
	"N": 'N', "ASN": 'N',
	"D": 'D', "ASP": 'D',
	"C": 'C', "CYS": 'C',
	"Q": 'Q', "GLN": 'Q',
	"E": 'E', "GLU": 'E',
	"G": 'G', "GLY": 'G',
	"H": 'H', "HIS": 'H',
	"I": 'I', "ILE": 'I',
	"L": 'L', "LEU": 'L',
	"K": 'K', "LYS": 'K',
	"M": 'M', "MET": 'M',
	"F": 'F', "PHE": 'F',
	"P": 'P', "PRO": 'P',
	"S": 'S', "SER": 'S',
	"T": 'T', "THR": 'T',
	"W": 'W', "TRP": 'W',
	"Y": 'Y', "TYR": 'Y',
	"V": 'V', "VAL": 'V',
	"*": '*', "TER": '*', "STOP": '*',
}

// AminoAcidOneLetter maps a one- or three-letter amino acid code (or a stop
// spelling) to its one-letter form.
func AminoAcidOneLetter(code string) (byte, bool) {
	c, ok := aminoAcidCodes[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// NormalizeProteinChange canonicalizes a protein change like "p.Val600Glu" to
// the short form "V600E". Inputs that do not parse are returned as-is (minus
// any p. prefix).
func NormalizeProteinChange(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, prefix := range []string{"p.", "P."} {
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}
	if trimmed == "" {
		return ""
	}

	startDigits := strings.IndexFunc(trimmed, func(r rune) bool { return r >= '0' && r <= '9' })
	if startDigits < 0 {
		return trimmed
	}
	endDigits := startDigits
	for endDigits < len(trimmed) && trimmed[endDigits] >= '0' && trimmed[endDigits] <= '9' {
		endDigits++
	}

	from, ok := AminoAcidOneLetter(trimmed[:startDigits])
	if !ok {
		return trimmed
	}
	to, ok := AminoAcidOneLetter(trimmed[endDigits:])
	if !ok {
		return trimmed
	}
	return string(from) + trimmed[startDigits:endDigits] + string(to)
}
