package domain

import "fmt"

// SDG is one of the 17 UN Sustainable Development Goals, identified by its official title.
type SDG string

const (
	SDGNoPoverty              SDG = "No Poverty"
	SDGZeroHunger             SDG = "Zero Hunger"
	SDGGoodHealth             SDG = "Good Health and Well-being"
	SDGQualityEducation       SDG = "Quality Education"
	SDGGenderEquality         SDG = "Gender Equality"
	SDGCleanWater             SDG = "Clean Water and Sanitation"
	SDGCleanEnergy            SDG = "Affordable and Clean Energy"
	SDGDecentWork             SDG = "Decent Work and Economic Growth"
	SDGIndustryInnovation     SDG = "Industry, Innovation and Infrastructure"
	SDGReducedInequality      SDG = "Reduced Inequality"
	SDGSustainableCities      SDG = "Sustainable Cities and Communities"
	SDGResponsibleConsumption SDG = "Responsible Consumption and Production"
	SDGClimateAction          SDG = "Climate Action"
	SDGLifeBelowWater         SDG = "Life Below Water"
	SDGLifeOnLand             SDG = "Life on Land"
	SDGPeaceJustice           SDG = "Peace, Justice and Strong Institutions"
	SDGPartnerships           SDG = "Partnerships for the Goals"
)

// MaxSDGsPerPost bounds how many goals one post may be tagged with.
const MaxSDGsPerPost = 2

// SDGPortalURL is used when a goal has no dedicated page.
const SDGPortalURL = "https://sdgs.un.org"

var allSDGs = []SDG{
	SDGNoPoverty,
	SDGZeroHunger,
	SDGGoodHealth,
	SDGQualityEducation,
	SDGGenderEquality,
	SDGCleanWater,
	SDGCleanEnergy,
	SDGDecentWork,
	SDGIndustryInnovation,
	SDGReducedInequality,
	SDGSustainableCities,
	SDGResponsibleConsumption,
	SDGClimateAction,
	SDGLifeBelowWater,
	SDGLifeOnLand,
	SDGPeaceJustice,
	SDGPartnerships,
}

var sdgNumbers = func() map[SDG]int {
	m := make(map[SDG]int, len(allSDGs))
	for i, s := range allSDGs {
		m[s] = i + 1
	}
	return m
}()

// AllSDGs returns the goals in official order. The slice is a copy.
func AllSDGs() []SDG {
	out := make([]SDG, len(allSDGs))
	copy(out, allSDGs)
	return out
}

func (s SDG) String() string {
	return string(s)
}

func (s SDG) IsValid() bool {
	_, ok := sdgNumbers[s]
	return ok
}

// Number returns the official goal number (1-17), or 0 for unknown titles.
func (s SDG) Number() int {
	return sdgNumbers[s]
}

// Link returns the UN page for the goal, or nil for unknown titles.
func (s SDG) Link() *string {
	n, ok := sdgNumbers[s]
	if !ok {
		return nil
	}
	link := fmt.Sprintf("https://sdgs.un.org/goals/goal%d", n)
	return &link
}
