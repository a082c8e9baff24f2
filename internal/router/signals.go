package router

import (
	"strings"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/textproc"
)

// Signal is one of the 13 fixed content signals the router tests a claim
// against (§4.E). Each is a keyword-bag or structural test over claim text.
type Signal string

const (
	SignalCompanyMention     Signal = "company_mention"
	SignalAcademicLanguage   Signal = "academic_language"
	SignalHealthClinical     Signal = "health_clinical"
	SignalFinancialMetric    Signal = "financial_metric"
	SignalDrugPharma         Signal = "drug_pharma"
	SignalLaborEmployment    Signal = "labor_employment"
	SignalBudgetSpending     Signal = "budget_spending"
	SignalDemographic        Signal = "demographic"
	SignalInternational      Signal = "international"
	SignalPatentInvention    Signal = "patent_invention"
	SignalDatePresent        Signal = "date_present"
	SignalNumberPresent      Signal = "number_present"
	SignalNamedEntityPresent Signal = "named_entity_present"
)

// AllSignals is the fixed, ordered list of every content signal the router
// evaluates, in a stable order so boost application is deterministic.
var AllSignals = []Signal{
	SignalCompanyMention, SignalAcademicLanguage, SignalHealthClinical,
	SignalFinancialMetric, SignalDrugPharma, SignalLaborEmployment,
	SignalBudgetSpending, SignalDemographic, SignalInternational,
	SignalPatentInvention, SignalDatePresent, SignalNumberPresent,
	SignalNamedEntityPresent,
}

// keywordSignals are the keyword-bag-driven signals; date/number/entity
// presence are structural and evaluated separately in Fire.
var keywordSignals = map[Signal][]string{
	SignalCompanyMention: {
		"inc", "corp", "corporation", "ltd", "llc", "company", "shares",
		"stock", "ticker", "ipo", "earnings call", "market cap",
	},
	SignalAcademicLanguage: {
		"study", "researchers", "peer-reviewed", "journal", "findings",
		"hypothesis", "methodology", "sample size", "p-value", "cohort",
	},
	SignalHealthClinical: {
		"clinical", "patient", "trial", "diagnosis", "treatment", "fda",
		"disease", "symptom", "mortality", "vaccine",
	},
	SignalFinancialMetric: {
		"revenue", "gaap", "eps", "gdp", "inflation", "interest rate",
		"fiscal", "earnings", "balance sheet", "cash flow",
	},
	SignalDrugPharma: {
		"drug", "pharmaceutical", "dosage", "side effect", "fda approval",
		"clinical trial", "generic", "prescription",
	},
	SignalLaborEmployment: {
		"unemployment", "wage", "payroll", "labor force", "workers",
		"union", "strike", "jobs report", "hiring",
	},
	SignalBudgetSpending: {
		"budget", "appropriation", "spending bill", "deficit", "expenditure",
		"fiscal year", "allocation",
	},
	SignalDemographic: {
		"population", "census", "birth rate", "life expectancy",
		"demographic", "age group",
	},
	SignalInternational: {
		"united nations", "world bank", "imf", "bilateral", "treaty",
		"export", "import", "tariff", "foreign",
	},
	SignalPatentInvention: {
		"patent", "invention", "trademark", "intellectual property",
		"prototype", "filed for patent",
	},
}

// Fire reports which of the 13 signals are present in claim text, using
// entities/numbers/dates detected by the shared textproc detectors for the
// three structural signals.
func Fire(text string, entities []textproc.EntityMention, numbers []model.NumberMention, dates []textproc.DateMention) map[Signal]bool {
	fired := make(map[Signal]bool, len(AllSignals))
	lower := strings.ToLower(text)
	for sig, words := range keywordSignals {
		for _, w := range words {
			if strings.Contains(lower, w) {
				fired[sig] = true
				break
			}
		}
	}
	if len(dates) > 0 {
		fired[SignalDatePresent] = true
	}
	if len(numbers) > 0 {
		fired[SignalNumberPresent] = true
	}
	if len(entities) > 0 {
		fired[SignalNamedEntityPresent] = true
	}
	return fired
}
