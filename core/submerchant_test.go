package core

import "testing"

func businessPartnerProcessor() ProcessorConfig {
	return ProcessorConfig{
		SubMerchantID:  "sub-1",
		SoftDescriptor: "ACME*STORE",
		Jurisdiction:   JurisdictionBusinessPartner,
	}
}

func facilitatorTable() FacilitatorConfig {
	return FacilitatorConfig{IDs: map[string]string{
		"visa":       "fac-visa",
		"mastercard": "fac-mc",
	}}
}

func TestBuildSubMerchantBusinessPartner(t *testing.T) {
	merchant := MerchantRecord{
		PublicID: "m-1",
		Country:  "Ecuador",
		Address:  "Av. Principal 100",
		City:     "Quito",
		ZipCode:  "170150",
		TaxID:    "1790000000001",
	}

	sub, err := BuildSubMerchant(merchant, businessPartnerProcessor(), "VISA", facilitatorTable())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sub.FacilitatorID != "fac-visa" {
		t.Fatalf("expected brand facilitator id, got %q", sub.FacilitatorID)
	}
	if sub.SoftDescriptor != "ACME*STORE" {
		t.Fatalf("expected soft descriptor, got %q", sub.SoftDescriptor)
	}
	if sub.CountryCode != "Ecuador" || sub.TaxID != "1790000000001" {
		t.Fatalf("merchant identity fields missing: %+v", sub)
	}
}

func TestBuildSubMerchantMissingFacilitatorID(t *testing.T) {
	_, err := BuildSubMerchant(MerchantRecord{}, businessPartnerProcessor(), "amex", facilitatorTable())
	if !IsErrorCode(err, ErrorCodeProcessorConfig) {
		t.Fatalf("expected %s, got %v", ErrorCodeProcessorConfig, err)
	}
}

func TestBuildSubMerchantMissingSoftDescriptor(t *testing.T) {
	processor := businessPartnerProcessor()
	processor.SoftDescriptor = ""

	_, err := BuildSubMerchant(MerchantRecord{PublicID: "m-1"}, processor, "visa", facilitatorTable())
	if !IsErrorCode(err, ErrorCodeProcessorConfig) {
		t.Fatalf("expected %s, got %v", ErrorCodeProcessorConfig, err)
	}
}

func TestBuildSubMerchantMerchantSoftDescriptorFallback(t *testing.T) {
	processor := businessPartnerProcessor()
	processor.SoftDescriptor = ""
	merchant := MerchantRecord{PublicID: "m-1", SoftDescriptor: "MERCHANT*SD"}

	sub, err := BuildSubMerchant(merchant, processor, "visa", facilitatorTable())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sub.SoftDescriptor != "MERCHANT*SD" {
		t.Fatalf("expected merchant fallback descriptor, got %q", sub.SoftDescriptor)
	}
}

func TestBuildSubMerchantOrdinaryJurisdiction(t *testing.T) {
	processor := ProcessorConfig{SubMerchantID: "sub-9", Jurisdiction: JurisdictionOrdinary}
	sub, err := BuildSubMerchant(MerchantRecord{}, processor, "amex", FacilitatorConfig{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sub.FacilitatorID != "sub-9" {
		t.Fatalf("ordinary jurisdiction uses the processor sub-merchant id, got %q", sub.FacilitatorID)
	}
}

func TestRequiresSubMerchant(t *testing.T) {
	if !RequiresSubMerchant(ProcessorConfig{Jurisdiction: JurisdictionBusinessPartner}) {
		t.Fatal("business partner always requires the block")
	}
	if !RequiresSubMerchant(ProcessorConfig{SubMerchantID: "sub-1"}) {
		t.Fatal("a configured sub-merchant id requires the block")
	}
	if RequiresSubMerchant(ProcessorConfig{}) {
		t.Fatal("plain processors do not require the block")
	}
}
