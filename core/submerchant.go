package core

import "strings"

// BuildSubMerchant merges the merchant profile, the processor configuration
// and the jurisdiction rule into the payment-facilitator identity block.
//
// Ordinary jurisdictions use the processor-level sub-merchant id as-is. The
// business-partner jurisdiction substitutes the brand-specific facilitator id
// from the configured table and mandates a soft descriptor; a missing soft
// descriptor fails before any remote call. When present, the soft descriptor
// always overrides the sub-merchant name.
func BuildSubMerchant(merchant MerchantRecord, processor ProcessorConfig, brand string, facilitators FacilitatorConfig) (SubMerchantData, error) {
	sub := SubMerchantData{
		Address:     strings.TrimSpace(merchant.Address),
		City:        strings.TrimSpace(merchant.City),
		CountryCode: strings.TrimSpace(merchant.Country),
		ID:          strings.TrimSpace(processor.SubMerchantID),
		TaxID:       strings.TrimSpace(merchant.TaxID),
		ZipCode:     strings.TrimSpace(merchant.ZipCode),
	}

	softDescriptor := strings.TrimSpace(processor.SoftDescriptor)
	if softDescriptor == "" {
		softDescriptor = strings.TrimSpace(merchant.SoftDescriptor)
	}

	switch processor.Jurisdiction {
	case JurisdictionBusinessPartner:
		facilitatorID, ok := facilitators.ID(brand)
		if !ok {
			return SubMerchantData{}, ProcessorConfigError(
				"no payment facilitator id configured for card brand",
				map[string]any{"brand": strings.ToLower(strings.TrimSpace(brand))},
			)
		}
		if softDescriptor == "" {
			return SubMerchantData{}, ProcessorConfigError(
				"soft descriptor is required for business-partner jurisdiction",
				map[string]any{"merchant_id": merchant.PublicID},
			)
		}
		sub.FacilitatorID = facilitatorID
	default:
		sub.FacilitatorID = strings.TrimSpace(processor.SubMerchantID)
	}

	sub.SoftDescriptor = softDescriptor
	return sub, nil
}

// RequiresSubMerchant reports whether a processor configuration needs the
// sub-merchant block on every transaction.
func RequiresSubMerchant(processor ProcessorConfig) bool {
	if processor.Jurisdiction == JurisdictionBusinessPartner {
		return true
	}
	return strings.TrimSpace(processor.SubMerchantID) != ""
}
