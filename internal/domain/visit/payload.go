package visit

import (
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
)

// Payload is the typed projection of a visit's answers. The set of
// implementations is closed.
type Payload interface {
	Protocol() assessment.FormID
	payload()
}

// General is a plain visit, or one whose protocol is not in the catalog.
type General struct {
	Tag assessment.FormID
}

// Antenatal is an antenatal-care visit.
type Antenatal struct {
	ANCVisits   scoring.Measure
	RiskFactors []string
	Hemoglobin  scoring.Measure
}

// Under5 is an under-five child assessment.
type Under5 struct {
	Immunization string
	Nutrition    string
	MUAC         scoring.Measure
}

// NCDScreening is a blood pressure and blood sugar screening.
type NCDScreening struct {
	Systolic  scoring.Measure
	Diastolic scoring.Measure
	RBS       scoring.Measure
}

// SocioEconomic is a Kuppuswamy questionnaire.
type SocioEconomic struct {
	Education     scoring.Measure
	Occupation    scoring.Measure
	MonthlyIncome scoring.Measure
}

// Environment is an environmental-health survey.
type Environment struct {
	WaterSource   string
	Latrine       string
	WasteDisposal string
}

// Anthropometry carries body measurements.
type Anthropometry struct {
	WeightKg scoring.Measure
	HeightCm scoring.Measure
	WaistCm  scoring.Measure
	HipCm    scoring.Measure
}

// Questionnaire is any other catalog form, kept as raw answers.
type Questionnaire struct {
	Form    assessment.FormID
	Answers scoring.Answers
}

func (g General) Protocol() assessment.FormID     { return g.Tag }
func (Antenatal) Protocol() assessment.FormID     { return assessment.FormAntenatalCare }
func (Under5) Protocol() assessment.FormID        { return assessment.FormUnder5 }
func (NCDScreening) Protocol() assessment.FormID  { return assessment.FormNCDScreening }
func (SocioEconomic) Protocol() assessment.FormID { return assessment.FormSocioEconomic }
func (Environment) Protocol() assessment.FormID   { return assessment.FormEnvironment }
func (Anthropometry) Protocol() assessment.FormID { return assessment.FormAnthropometry }
func (q Questionnaire) Protocol() assessment.FormID {
	return q.Form
}

func (General) payload()       {}
func (Antenatal) payload()     {}
func (Under5) payload()        {}
func (NCDScreening) payload()  {}
func (SocioEconomic) payload() {}
func (Environment) payload()   {}
func (Anthropometry) payload() {}
func (Questionnaire) payload() {}

// Record is a visit as the analytics see it: scalar columns plus the typed
// payload.
type Record struct {
	ID       string
	FamilyID string
	MemberID string
	Date     time.Time
	Payload  Payload
}

// Protocol is a shorthand for r.Payload.Protocol().
func (r Record) Protocol() assessment.FormID { return r.Payload.Protocol() }

// Project converts a stored visit into a Record. Malformed fields become
// missing values; projection never fails.
func Project(v *Visit) Record {
	a := v.Data
	rec := Record{ID: v.ID, FamilyID: v.FamilyID, MemberID: v.MemberID(), Date: v.Date}

	switch id := v.Protocol(); id {
	case assessment.FormAntenatalCare:
		rec.Payload = Antenatal{
			ANCVisits:   a.Measure(assessment.FieldANCVisits),
			RiskFactors: a.Strings(assessment.FieldRiskFactors),
			Hemoglobin:  a.Measure(assessment.FieldHemoglobin),
		}
	case assessment.FormUnder5:
		rec.Payload = Under5{
			Immunization: a.String(assessment.FieldImmunization),
			Nutrition:    a.String(assessment.FieldNutrition),
			MUAC:         a.Measure(scoring.FieldMUACCm),
		}
	case assessment.FormNCDScreening:
		rec.Payload = NCDScreening{
			Systolic:  a.Measure(scoring.FieldSystolic),
			Diastolic: a.Measure(scoring.FieldDiastolic),
			RBS:       a.Measure(scoring.FieldRBS),
		}
	case assessment.FormSocioEconomic:
		rec.Payload = SocioEconomic{
			Education:     a.Measure(scoring.FieldEducationScore),
			Occupation:    a.Measure(scoring.FieldOccupationScore),
			MonthlyIncome: a.Measure(scoring.FieldMonthlyIncome),
		}
	case assessment.FormEnvironment:
		rec.Payload = Environment{
			WaterSource:   a.String(assessment.FieldWaterSource),
			Latrine:       a.String(assessment.FieldLatrine),
			WasteDisposal: a.String(assessment.FieldWasteDisposal),
		}
	case assessment.FormAnthropometry:
		rec.Payload = Anthropometry{
			WeightKg: a.Measure(scoring.FieldWeightKg),
			HeightCm: a.Measure(scoring.FieldHeightCm),
			WaistCm:  a.Measure(scoring.FieldWaistCm),
			HipCm:    a.Measure(scoring.FieldHipCm),
		}
	default:
		if _, known := assessment.Lookup(id); known {
			rec.Payload = Questionnaire{Form: id, Answers: v.Answers()}
		} else {
			rec.Payload = General{Tag: id}
		}
	}
	return rec
}

// ProjectAll projects visits in order.
func ProjectAll(visits []*Visit) []Record {
	out := make([]Record, 0, len(visits))
	for _, v := range visits {
		out = append(out, Project(v))
	}
	return out
}
