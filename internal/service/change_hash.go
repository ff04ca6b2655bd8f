package service

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

// Change hashes fingerprint only identity and mutation-relevant fields.
// Hashing the full payload would remix volatile fields into the digest and
// fire reconciliation passes for noise.

// rosterChangeHash fingerprints the roster source: an ordered list of
// (id, category, program, lastUpdated).
func rosterChangeHash(enrollments []models.StudentEnrollment) string {
	parts := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		parts = append(parts, strings.Join([]string{
			e.StudentID,
			models.StrField(e.Category),
			models.StrField(e.Program),
			models.StrField(e.LastUpdated),
		}, "|"))
	}
	return digest(parts)
}

// ledgerChangeHash fingerprints the payments+pricing source: a combined
// ordered list of (paymentId, lastUpdated) and (courseId, price, lastUpdated).
func ledgerChangeHash(payments []models.PaymentDoc, courses []models.CoursePricing) string {
	parts := make([]string, 0, len(payments)+len(courses))
	for _, p := range payments {
		parts = append(parts, p.ID+"|"+strconv.FormatInt(p.LastUpdated.UnixNano(), 10))
	}
	for _, c := range courses {
		parts = append(parts, strings.Join([]string{
			c.ID,
			strconv.FormatFloat(c.Price, 'f', -1, 64),
			models.StrField(c.LastUpdated),
		}, "|"))
	}
	return digest(parts)
}

func digest(parts []string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}
