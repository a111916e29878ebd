package transform

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
)

// DrugFromMyChem builds the core drug record from a MyChem.info hit.
func DrugFromMyChem(hit gjson.Result) *domain.Drug {
	out := &domain.Drug{
		ID:         hit.Get("_id").String(),
		Name:       firstString(hit, "chembl.pref_name", "drugbank.name"),
		ChemblID:   firstScalarString(hit, "chembl.molecule_chembl_id"),
		DrugBankID: firstScalarString(hit, "drugbank.id"),
	}
	out.ApprovalStatus = drugApprovalStatus(hit)
	out.Description = firstScalarString(hit, "chembl.indication_class")

	seen := map[string]bool{}
	for _, syn := range normalizedArray(hit.Get("chembl.molecule_synonyms")) {
		if !strings.EqualFold(syn.Get("syn_type").String(), "TRADE_NAME") {
			continue
		}
		name := strings.TrimSpace(syn.Get("molecule_synonym").String())
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out.TradeNames = append(out.TradeNames, name)
	}

	if mech := normalizedArray(hit.Get("chembl.drug_mechanisms")); len(mech) > 0 {
		out.MechanismOfAction = strings.TrimSpace(mech[0].Get("mechanism_of_action").String())
	}
	for _, target := range normalizedArray(hit.Get("drugbank.targets")) {
		gene := strings.TrimSpace(target.Get("gene_name").String())
		if gene == "" {
			gene = strings.TrimSpace(target.Get("name").String())
		}
		if gene == "" {
			continue
		}
		out.Targets = append(out.Targets, domain.DrugTarget{
			Gene:       gene,
			ActionType: firstScalarString(target, "actions"),
		})
	}
	for _, use := range normalizedArray(hit.Get("drugcentral.drug_use.indication")) {
		if name := strings.TrimSpace(use.Get("concept_name").String()); name != "" {
			out.Indications = append(out.Indications, name)
		}
	}
	return out
}

func drugApprovalStatus(hit gjson.Result) string {
	if approval := hit.Get("chembl.first_approval"); approval.Exists() {
		return "Approved (" + approval.String() + ")"
	}
	if hit.Get("drugcentral.approval").Exists() {
		return "Approved"
	}
	if phase := hit.Get("chembl.max_phase"); phase.Exists() && phase.Float() > 0 {
		return "Investigational (max phase " + phase.String() + ")"
	}
	return ""
}

// DrugInteractionsFromMyChem maps the DrugBank drug-drug interaction block.
func DrugInteractionsFromMyChem(hit gjson.Result, limit int) []domain.DrugInteraction {
	var out []domain.DrugInteraction
	for _, row := range normalizedArray(hit.Get("drugbank.drug_interactions")) {
		name := strings.TrimSpace(row.Get("name").String())
		if name == "" {
			continue
		}
		out = append(out, domain.DrugInteraction{
			Drug:        name,
			Description: strings.TrimSpace(row.Get("description").String()),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// DrugSearchRowFromMyChem projects one query hit.
func DrugSearchRowFromMyChem(hit gjson.Result) domain.DrugSearchResult {
	full := DrugFromMyChem(hit)
	return domain.DrugSearchResult{
		ID:             full.ID,
		Name:           full.Name,
		TradeNames:     full.TradeNames,
		ApprovalStatus: full.ApprovalStatus,
		DrugBankID:     full.DrugBankID,
	}
}

// DrugLabelFromOpenFDA extracts the label slice from one openFDA label result.
func DrugLabelFromOpenFDA(result gjson.Result) *domain.DrugLabel {
	row := result.Get("results.0")
	if !row.Exists() {
		return nil
	}
	out := &domain.DrugLabel{
		BoxedWarning:     firstScalarString(row, "boxed_warning"),
		IndicationsUsage: firstScalarString(row, "indications_and_usage"),
		Warnings:         firstScalarString(row, "warnings"),
		AdverseReactions: firstScalarString(row, "adverse_reactions"),
		Manufacturer:     firstScalarString(row, "openfda.manufacturer_name"),
	}
	for _, route := range row.Get("openfda.route").Array() {
		if r := strings.TrimSpace(route.String()); r != "" {
			out.Route = append(out.Route, r)
		}
	}
	if out.BoxedWarning == "" && out.IndicationsUsage == "" && out.Warnings == "" &&
		out.AdverseReactions == "" && out.Manufacturer == "" && len(out.Route) == 0 {
		return nil
	}
	return out
}

// DrugApprovalsFromOpenFDA maps Drugs@FDA application rows.
func DrugApprovalsFromOpenFDA(result gjson.Result, limit int) []domain.DrugApproval {
	var out []domain.DrugApproval
	for _, row := range result.Get("results").Array() {
		appNo := strings.TrimSpace(row.Get("application_number").String())
		if appNo == "" {
			continue
		}
		product := row.Get("products.0")
		out = append(out, domain.DrugApproval{
			ApplicationNumber: appNo,
			SponsorName:       strings.TrimSpace(row.Get("sponsor_name").String()),
			BrandName:         strings.TrimSpace(product.Get("brand_name").String()),
			MarketingStatus:   strings.TrimSpace(product.Get("marketing_status").String()),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// DrugShortageFromOpenFDA extracts the shortage slice; nil when the feed has
// no row for the drug.
func DrugShortageFromOpenFDA(result gjson.Result) *domain.DrugShortage {
	row := result.Get("results.0")
	if !row.Exists() {
		return nil
	}
	out := &domain.DrugShortage{
		Status:      row.Get("status").String(),
		Reason:      row.Get("shortage_reason").String(),
		UpdatedDate: row.Get("update_date").String(),
	}
	if out.Status == "" {
		return nil
	}
	return out
}
