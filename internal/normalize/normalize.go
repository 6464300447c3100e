package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"ftalerts/internal/offer"
)

// DetailURLFormat builds the candidate-site detail page for an offer id, used
// when the source record carries no usable URL of its own.
const DetailURLFormat = "https://candidat.francetravail.fr/offres/recherche/detail/%s"

// Offer maps one raw API record into the canonical shape. It always succeeds:
// missing or mistyped source fields fall back to safe defaults.
func Offer(r offer.RawRecord) offer.Offer {
	o := offer.Offer{
		OfferID: firstString(r, path{"id"}, path{"offerId"}, path{"reference"}, path{"idOffre"}),
		Title:   firstString(r, path{"intitule"}, path{"title"}),
		Company: firstString(r, path{"entreprise", "nom"}, path{"company"}),
	}

	if hasObject(r, "lieuTravail") {
		o.City = firstString(r, path{"lieuTravail", "libelle"}, path{"lieuTravail", "ville"})
		o.PostalCode = firstString(r, path{"lieuTravail", "codePostal"})
		o.Department = firstString(r, path{"lieuTravail", "departement"})
		if o.Department == "" && len(o.PostalCode) >= 2 {
			o.Department = o.PostalCode[:2]
		}
		o.Latitude = firstFloat(r, path{"lieuTravail", "latitude"})
		o.Longitude = firstFloat(r, path{"lieuTravail", "longitude"})
		// both-or-none invariant
		if o.Latitude == nil || o.Longitude == nil {
			o.Latitude, o.Longitude = nil, nil
		}
		o.Location = strings.TrimSpace(fmt.Sprintf("%s (%s)", o.City, o.Department))
	} else {
		o.Location = firstString(r, path{"location"}, path{"address"})
	}

	o.ContractType = firstString(r, path{"typeContrat"}, path{"contractType"})
	o.PublishedAt = firstString(r, path{"dateCreation"}, path{"publishedAt"}, path{"publication"})

	o.URL = firstString(r, path{"origineOffre", "urlOrigine"}, path{"origineOffre", "url"}, path{"url"})
	o.OriginCode = firstString(r, path{"origineOffre", "origine"})
	if o.URL == "" && o.OfferID != "" {
		o.URL = fmt.Sprintf(DetailURLFormat, o.OfferID)
	}
	o.ApplyURL = firstString(r, path{"lienPostuler"})
	if o.ApplyURL == "" {
		o.ApplyURL = o.URL
	}

	o.Salary = firstString(r, path{"salaire", "libelle"}, path{"salary"})
	o.Description = firstString(r, path{"description"})
	o.ShortageFlag = firstBoolFlag(r, path{"offresManqueCandidats"})

	o.ROMECodes = []string{}
	o.Keywords = []string{}

	if b, err := json.Marshal(map[string]any(r)); err == nil {
		o.RawJSON = string(b)
	}

	return o
}
