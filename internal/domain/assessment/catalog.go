package assessment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
)

// Option values the analytics read back from visit payloads.
const (
	ImmunizationUpToDate = "Up-to-date"
	NutritionGreen       = "Green (Normal)"
	LatrineYes           = "Yes"
	WasteSegregated      = "Segregated"
)

// Field keys shared between forms and the typed visit payloads.
const (
	FieldANCVisits       = "anc_visits"
	FieldRiskFactors     = "risk_factors"
	FieldLMP             = "lmp"
	FieldHemoglobin      = "hemoglobin"
	FieldImmunization    = "immunization_status"
	FieldNutrition       = "nutrition_status"
	FieldWaterSource     = "water_source"
	FieldLatrine         = "latrine"
	FieldWasteDisposal   = "waste_disposal"
	FieldVillage         = "village"
	FieldFamilySize      = "family_size"
	FieldTobaccoUse      = "tobacco_use"
	FieldTotalPopulation = "total_population"
)

// SafeWaterSources are the water_source answers counted as safe drinking water.
var SafeWaterSources = []string{"Piped water", "Tube well / Borewell", "Protected well", "Bottled water"}

var (
	waterSourceOptions   = append(append([]string(nil), SafeWaterSources...), "Unprotected well", "Surface water", "Tanker")
	wasteOptions         = []string{WasteSegregated, "Municipal collection", "Burning", "Open dumping"}
	yesNo                = []string{"Yes", "No"}
	genderOptions        = []string{"Male", "Female", "Other"}
	immunizationOptions  = []string{ImmunizationUpToDate, "Partially immunized", "Not immunized"}
	nutritionOptions     = []string{NutritionGreen, "Yellow (Moderate)", "Red (Severe)"}
	antenatalRiskFactors = []string{
		"Anemia", "Hypertension", "Gestational Diabetes", "Previous C-section",
		"Multiple Pregnancy", "Age <18 or >35", "Short Stature", "Bad Obstetric History",
	}
)

func bound(v float64) *float64 { return &v }

func number(key, label string, required bool, lo, hi float64) Field {
	return Field{Key: key, Label: label, Type: FieldNumber, Required: required, Min: bound(lo), Max: bound(hi)}
}

func choice(key, label string, required bool, options ...string) Field {
	return Field{Key: key, Label: label, Type: FieldSelect, Required: required, Options: options}
}

func memberRef(required bool) Field {
	return Field{Key: FieldMemberID, Label: "Family member", Type: FieldText, Required: required}
}

// scale builds integer-scored select questions from item keys and labels.
func scale(keys, labels []string, lo, hi int) []Field {
	opts := make([]string, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		opts = append(opts, fmt.Sprint(v))
	}
	fields := make([]Field, len(keys))
	for i, k := range keys {
		fields[i] = choice(k, labels[i], true, opts...)
	}
	return fields
}

func screeningSchema(id FormID, title string, inst scoring.Instrument, labels []string, lo, hi int) Schema {
	fields := append([]Field{memberRef(true)}, scale(scoring.Inputs(inst), labels, lo, hi)...)
	return Schema{
		ID:            id,
		Title:         title,
		Fields:        fields,
		AutoCalculate: []string{AutoTotalScore, AutoSeverity},
		Instrument:    inst,
		MemberScoped:  true,
	}
}

var catalog = map[FormID]Schema{}

func register(s Schema) { catalog[s.ID] = s }

func init() {
	register(Schema{
		ID:    FormHouseholdProfile,
		Title: "Village and Household Profile",
		Fields: []Field{
			{Key: FieldVillage, Label: "Village", Type: FieldText, Required: true},
			number(FieldTotalPopulation, "Village population", false, 0, 1e7),
			number(FieldFamilySize, "Household size", false, 1, 50),
			choice("electricity", "Electricity connection", false, yesNo...),
			choice("road_access", "All-weather road access", false, yesNo...),
		},
	})
	register(Schema{
		ID:    FormAnthropometry,
		Title: "Anthropometric Assessment",
		Fields: []Field{
			memberRef(true),
			choice(scoring.FieldGender, "Gender", false, genderOptions...),
			number(scoring.FieldWeightKg, "Weight (kg)", true, 1, 300),
			number(scoring.FieldHeightCm, "Height (cm)", true, 30, 250),
			number(scoring.FieldWaistCm, "Waist circumference (cm)", false, 20, 200),
			number(scoring.FieldHipCm, "Hip circumference (cm)", false, 20, 200),
		},
		AutoCalculate: []string{AutoBMI, AutoIBW, AutoWHR},
		MemberScoped:  true,
	})
	register(Schema{
		ID:    FormNCDScreening,
		Title: "NCD Screening",
		Fields: []Field{
			memberRef(true),
			number(scoring.FieldSystolic, "Systolic BP (mmHg)", true, 50, 300),
			number(scoring.FieldDiastolic, "Diastolic BP (mmHg)", true, 30, 200),
			number(scoring.FieldRBS, "Random blood sugar (mg/dL)", false, 20, 700),
			choice(FieldTobaccoUse, "Tobacco use", false, "Never", "Former", "Current"),
		},
		MemberScoped: true,
	})
	register(Schema{
		ID:    FormAntenatalCare,
		Title: "Antenatal Care",
		Fields: []Field{
			memberRef(true),
			{Key: FieldLMP, Label: "Last menstrual period", Type: FieldDate},
			number(FieldANCVisits, "ANC visits completed", true, 0, 20),
			number(FieldHemoglobin, "Haemoglobin (g/dL)", false, 3, 20),
			{Key: FieldRiskFactors, Label: "Risk factors", Type: FieldMultiSelect, Options: antenatalRiskFactors},
		},
		MemberScoped: true,
	})
	register(Schema{
		ID:    FormUnder5,
		Title: "Under-5 Child Assessment",
		Fields: []Field{
			memberRef(true),
			choice(FieldImmunization, "Immunization status", true, immunizationOptions...),
			choice(FieldNutrition, "Growth chart zone", false, nutritionOptions...),
			number(scoring.FieldMUACCm, "MUAC (cm)", false, 5, 30),
			number(scoring.FieldWeightKg, "Weight (kg)", false, 1, 40),
		},
		MemberScoped: true,
	})
	register(Schema{
		ID:    FormSocioEconomic,
		Title: "Socio-economic Status (Kuppuswamy)",
		Fields: []Field{
			choice(scoring.FieldEducationScore, "Education of head of family", true, "1", "2", "3", "4", "5", "6", "7"),
			choice(scoring.FieldOccupationScore, "Occupation of head of family", true, "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"),
			number(scoring.FieldMonthlyIncome, "Monthly family income (Rs)", true, 0, 1e8),
			number(FieldFamilySize, "Family size", false, 1, 50),
		},
		AutoCalculate: []string{AutoTotalScore},
		Instrument:    scoring.InstrumentKuppuswamy,
	})
	register(Schema{
		ID:    FormEnvironment,
		Title: "Environmental Health",
		Fields: []Field{
			choice(FieldWaterSource, "Drinking water source", true, waterSourceOptions...),
			choice(FieldLatrine, "Sanitary latrine available", true, yesNo...),
			choice(FieldWasteDisposal, "Solid waste disposal", true, wasteOptions...),
			choice("drainage", "Closed drainage", false, yesNo...),
		},
	})

	register(screeningSchema(FormPHQ9, "PHQ-9 Depression Screening", scoring.InstrumentPHQ9, []string{
		"Little interest or pleasure in doing things",
		"Feeling down, depressed, or hopeless",
		"Trouble falling or staying asleep, or sleeping too much",
		"Feeling tired or having little energy",
		"Poor appetite or overeating",
		"Feeling bad about yourself",
		"Trouble concentrating on things",
		"Moving or speaking slowly, or being fidgety or restless",
		"Thoughts that you would be better off dead or of hurting yourself",
	}, 0, 3))
	register(screeningSchema(FormGAD7, "GAD-7 Anxiety Screening", scoring.InstrumentGAD7, []string{
		"Feeling nervous, anxious, or on edge",
		"Not being able to stop or control worrying",
		"Worrying too much about different things",
		"Trouble relaxing",
		"Being so restless that it is hard to sit still",
		"Becoming easily annoyed or irritable",
		"Feeling afraid as if something awful might happen",
	}, 0, 3))
	register(screeningSchema(FormAUDIT, "AUDIT Alcohol Use Screening", scoring.InstrumentAUDIT, []string{
		"How often do you have a drink containing alcohol?",
		"How many drinks do you have on a typical drinking day?",
		"How often do you have six or more drinks on one occasion?",
		"How often were you unable to stop drinking once started?",
		"How often did you fail to do what was expected because of drinking?",
		"How often did you need a drink in the morning?",
		"How often did you feel guilt or remorse after drinking?",
		"How often were you unable to remember the night before?",
		"Have you or someone else been injured because of your drinking?",
		"Has anyone suggested you cut down?",
	}, 0, 4))
	register(screeningSchema(FormAUDITC, "AUDIT-C Alcohol Consumption", scoring.InstrumentAUDITC, []string{
		"How often do you have a drink containing alcohol?",
		"How many drinks do you have on a typical drinking day?",
		"How often do you have six or more drinks on one occasion?",
	}, 0, 4))
	register(Schema{
		ID:    FormMMSE,
		Title: "Mini-Mental State Examination",
		Fields: []Field{
			memberRef(true),
			number("mmse_orientation_time", "Orientation to time", true, 0, 5),
			number("mmse_orientation_place", "Orientation to place", true, 0, 5),
			number("mmse_registration", "Registration", true, 0, 3),
			number("mmse_attention", "Attention and calculation", true, 0, 5),
			number("mmse_recall", "Recall", true, 0, 3),
			number("mmse_language", "Language", true, 0, 8),
			number("mmse_copying", "Copying", true, 0, 1),
		},
		AutoCalculate: []string{AutoTotalScore, AutoSeverity},
		Instrument:    scoring.InstrumentMMSE,
		MemberScoped:  true,
	})
	register(screeningSchema(FormKatzADL, "Katz Index of Independence in ADL", scoring.InstrumentKatz, []string{
		"Bathing", "Dressing", "Toileting", "Transferring", "Continence", "Feeding",
	}, 0, 1))
}

// Lookup returns the schema for id.
func Lookup(id FormID) (Schema, bool) {
	s, ok := catalog[id]
	return s, ok
}

// ParseFormID resolves a case-insensitive form identifier against the catalog.
func ParseFormID(s string) (FormID, bool) {
	id := FormID(strings.ToLower(strings.TrimSpace(s)))
	_, ok := catalog[id]
	return id, ok
}

// All returns every schema ordered by id.
func All() []Schema {
	out := make([]Schema, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsSafeWater reports whether a water_source answer counts as safe.
func IsSafeWater(source string) bool {
	return contains(SafeWaterSources, source)
}
