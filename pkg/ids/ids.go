// Package ids validates and parses the identifier formats accepted at the
// orchestrator boundary: PMID, PMCID, DOI, NCT, rsID, HGVS genomic, UniProt
// accessions, and Reactome stable IDs.
package ids

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nctRe      = regexp.MustCompile(`^NCT\d{8}$`)
	rsidRe     = regexp.MustCompile(`^rs\d+$`)
	hgvsRe     = regexp.MustCompile(`^(chr)?([0-9]{1,2}|[XYM]|MT):g\.\d+[ACGT]+>[ACGT]+$`)
	uniprotRe  = regexp.MustCompile(`^(?:[OPQ][0-9][A-Z0-9]{3}[0-9]|[A-NR-Z][0-9](?:[A-Z][A-Z0-9]{2}[0-9]){1,2})(?:-\d+)?$`)
	reactomeRe = regexp.MustCompile(`^R-HSA-\d+$`)
	geneSymRe  = regexp.MustCompile(`^[A-Z0-9-]{1,20}$`)
	goIDRe     = regexp.MustCompile(`^GO:\d{7}$`)
	geneProtRe = regexp.MustCompile(`^([A-Za-z0-9-]+)[ :]+(p\.)?([A-Za-z*0-9>_]+)$`)
)

// ParsePMID returns the numeric PMID when id is all digits.
func ParsePMID(id string) (uint32, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// ParsePMCID canonicalizes PMC identifiers, accepting a leading "PMCID:"
// prefix and any case.
func ParsePMCID(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if len(id) > 6 && strings.EqualFold(id[:6], "PMCID:") {
		id = strings.TrimSpace(id[6:])
	}
	if len(id) < 4 || !strings.EqualFold(id[:3], "PMC") {
		return "", false
	}
	rest := strings.TrimSpace(id[3:])
	if rest == "" {
		return "", false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return "PMC" + rest, true
}

// IsDOI reports whether id looks like a DOI: starts with "10." and has a
// registrant/suffix slash.
func IsDOI(id string) bool {
	id = strings.TrimSpace(id)
	return strings.HasPrefix(id, "10.") && strings.Contains(id, "/")
}

// IsNCT reports whether id is NCT followed by exactly 8 digits.
func IsNCT(id string) bool {
	return nctRe.MatchString(strings.TrimSpace(strings.ToUpper(id)))
}

// IsRSID reports whether id is an rs-prefixed dbSNP identifier.
func IsRSID(id string) bool {
	return rsidRe.MatchString(strings.TrimSpace(strings.ToLower(id)))
}

// IsHGVSGenomic reports whether id is genomic HGVS like chr7:g.140453136A>T.
func IsHGVSGenomic(id string) bool {
	return hgvsRe.MatchString(strings.TrimSpace(id))
}

// IsUniProtAccession reports whether id matches the canonical UniProt
// accession grammar (isoform suffixes allowed).
func IsUniProtAccession(id string) bool {
	return uniprotRe.MatchString(strings.TrimSpace(id))
}

// IsReactomeID reports whether id is a human Reactome stable ID.
func IsReactomeID(id string) bool {
	return reactomeRe.MatchString(strings.TrimSpace(id))
}

// IsGeneSymbol reports whether token is an upper-case HGNC-style symbol:
// short, [A-Z0-9-]+, at least one letter.
func IsGeneSymbol(token string) bool {
	token = strings.TrimSpace(token)
	if !geneSymRe.MatchString(token) {
		return false
	}
	for _, c := range token {
		if c >= 'A' && c <= 'Z' {
			return true
		}
	}
	return false
}

// IsGOID reports whether id is a GO term identifier.
func IsGOID(id string) bool {
	return goIDRe.MatchString(strings.TrimSpace(strings.ToUpper(id)))
}

// VariantID is a parsed variant identifier.
type VariantID struct {
	Kind   VariantKind
	RSID   string
	HGVS   string
	Gene   string
	Change string
}

// VariantKind discriminates the accepted variant identifier shapes.
type VariantKind int

const (
	VariantInvalid VariantKind = iota
	VariantRSID
	VariantHGVSGenomic
	VariantGeneChange
)

// ParseVariantID classifies a variant identifier as rsID, genomic HGVS, or a
// "GENE change" pair (e.g. "BRAF V600E", "BRAF p.Val600Glu").
func ParseVariantID(id string) VariantID {
	id = strings.TrimSpace(id)
	switch {
	case IsRSID(id):
		return VariantID{Kind: VariantRSID, RSID: strings.ToLower(id)}
	case IsHGVSGenomic(id):
		return VariantID{Kind: VariantHGVSGenomic, HGVS: id}
	}
	fields := strings.Fields(id)
	if len(fields) == 2 && IsGeneSymbol(strings.ToUpper(fields[0])) {
		if m := geneProtRe.FindStringSubmatch(id); m != nil {
			return VariantID{
				Kind:   VariantGeneChange,
				Gene:   strings.ToUpper(fields[0]),
				Change: strings.TrimPrefix(fields[1], "p."),
			}
		}
	}
	return VariantID{Kind: VariantInvalid}
}
