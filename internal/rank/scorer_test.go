package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ftalerts/internal/offer"
)

func ptr(f float64) *float64 { return &f }

func TestScoreOfferComponents(t *testing.T) {
	base := offer.Offer{
		Title:        "Ingénieur ROS2 C++",
		ContractType: "CDI",
		Latitude:     ptr(47.76),
		Longitude:    ptr(7.34),
	}
	baseLat, baseLon := ptr(47.75), ptr(7.34)

	// ros2 (3.0) + c++ (2.5) + CDI (1.5) + within 20 km (1.5)
	got := ScoreOffer(base, baseLat, baseLon, DefaultWeights())
	assert.InDelta(t, 8.5, got, 0.001)
}

func TestScoreOfferDeterministic(t *testing.T) {
	o := offer.Offer{
		Title:       "Ingénieur robotique",
		Description: "SLAM, navigation, OpenCV",
		Salary:      "38k€",
	}
	a := ScoreOffer(o, nil, nil, DefaultWeights())
	b := ScoreOffer(o, nil, nil, DefaultWeights())
	assert.Equal(t, a, b)
}

func TestContractPreferenceOrdering(t *testing.T) {
	mk := func(contract string) float64 {
		return ScoreOffer(offer.Offer{Title: "Ingénieur ROS2", ContractType: contract}, nil, nil, DefaultWeights())
	}
	cdi, cdd, alt, stage := mk("CDI"), mk("CDD"), mk("Contrat en alternance"), mk("Stage 6 mois")
	assert.Greater(t, cdi, cdd)
	assert.Greater(t, cdd, alt)
	assert.Greater(t, alt, stage)

	// Unknown contract types add nothing.
	assert.InDelta(t, 3.0, mk("Mission freelance"), 0.001)
}

func TestDistanceBrackets(t *testing.T) {
	baseLat, baseLon := ptr(47.75), ptr(7.34)
	mk := func(lat, lon float64) float64 {
		return ScoreOffer(offer.Offer{
			Title:    "Ingénieur ROS2",
			Latitude: ptr(lat), Longitude: ptr(lon),
		}, baseLat, baseLon, DefaultWeights())
	}

	near := mk(47.76, 7.34)  // ~1 km
	mid := mk(48.08, 7.36)   // ~37 km (Colmar)
	far := mk(48.58, 7.75)   // ~97 km (Strasbourg)
	beyond := mk(48.86, 2.35) // Paris

	assert.InDelta(t, 3.0+1.5, near, 0.001)
	assert.InDelta(t, 3.0+0.8, mid, 0.001)
	assert.InDelta(t, 3.0+0.3, far, 0.001)
	assert.InDelta(t, 3.0, beyond, 0.001)

	// Missing coordinates: no distance component at all.
	noCoords := ScoreOffer(offer.Offer{Title: "Ingénieur ROS2"}, baseLat, baseLon, DefaultWeights())
	assert.InDelta(t, 3.0, noCoords, 0.001)
}

func TestSalaryBonus(t *testing.T) {
	mk := func(salary string) float64 {
		return ScoreOffer(offer.Offer{Title: "Ingénieur ROS2", Salary: salary}, nil, nil, DefaultWeights())
	}
	assert.InDelta(t, 3.0+1.0, mk("42k€"), 0.001)     // 3500/month
	assert.InDelta(t, 3.0+0.6, mk("38k€"), 0.001)     // ~3167/month
	assert.InDelta(t, 3.0+0.3, mk("2600 €/mois"), 0.001)
	assert.InDelta(t, 3.0, mk("1800 €/mois"), 0.001)
	assert.InDelta(t, 3.0, mk("selon profil"), 0.001)
}

func TestSalaryFallsBackToDescription(t *testing.T) {
	o := offer.Offer{
		Title:       "Ingénieur ROS2",
		Description: "Rémunération 42k€ selon profil",
	}
	assert.InDelta(t, 3.0+1.0, ScoreOffer(o, nil, nil, DefaultWeights()), 0.001)
}

func TestWeightsScaleComponents(t *testing.T) {
	o := offer.Offer{Title: "Ingénieur ROS2 C++", ContractType: "CDI"}

	w := Weights{Keyword: 1, Contract: 0, Distance: 1, Salary: 1}
	assert.InDelta(t, 5.5, ScoreOffer(o, nil, nil, w), 0.001)

	w = Weights{Keyword: 2, Contract: 1, Distance: 1, Salary: 1}
	assert.InDelta(t, 11.0+1.5, ScoreOffer(o, nil, nil, w), 0.001)
}

func TestHaversineKm(t *testing.T) {
	// Paris to Lyon, a well-known ~392 km great-circle distance.
	d := HaversineKm(48.8566, 2.3522, 45.7640, 4.8357)
	assert.InDelta(t, 392, d, 5)

	assert.InDelta(t, 0, HaversineKm(47.75, 7.34, 47.75, 7.34), 0.0001)
}
