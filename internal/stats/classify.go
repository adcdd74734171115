package stats

import (
	"strings"

	"ctedash/internal/normalize"
	"ctedash/pkg/contracts/domain"
)

// Raw status vocabulary used by the classification rules. The feed is
// hand-maintained, so matching is case-insensitive and, where noted,
// substring based.
const (
	statusOnTime     = "NO PRAZO"
	statusNoDate     = "SEM DATA"
	statusNoProof    = "SEM BAIXA"
	statusNotLowered = "NÃO BAIXADO"
	statusWithPhoto  = "COM FOTO"
)

// manifestVocabulary lists the substrings that mark a document as having an
// issued MDFe.
var manifestVocabulary = []string{"COM MDFE", "ENCERRADO", "AUTORIZADO"}

// ClassifySLA places a document into exactly one delivery-confirmation
// bucket. This is the single source of truth for the three-way test: the
// global summary and the per-unit accumulation both call it on the same
// record in the same pass, never reimplementing the conditions.
func ClassifySLA(c domain.Cte) SLABucket {
	status := normalize.Status(c.SLAStatus)
	proof := normalize.Status(c.DeliveryProof)

	if !c.HasSLADeadline() ||
		status == "" || status == statusNoDate ||
		proof == statusNoProof || strings.Contains(proof, statusNotLowered) {
		return SLANoConfirmation
	}
	if status == statusOnTime {
		return SLAOnTime
	}
	return SLALate
}

// ClassifyManifest places a document into exactly one manifest bucket.
func ClassifyManifest(c domain.Cte) ManifestBucket {
	status := normalize.Status(c.ManifestStatus)
	for _, marker := range manifestVocabulary {
		if strings.Contains(status, marker) {
			return ManifestPresent
		}
	}
	return ManifestMissing
}

// ClassifyPhoto places a document into exactly one photo-proof bucket,
// derived from the same SLA classification used everywhere else: documents
// without a confirmation are pending, not "without photo".
func ClassifyPhoto(c domain.Cte) PhotoBucket {
	if ClassifySLA(c) == SLANoConfirmation {
		return PhotoPending
	}
	if strings.Contains(normalize.Status(c.DeliveryProof), statusWithPhoto) {
		return PhotoPresent
	}
	return PhotoMissing
}
