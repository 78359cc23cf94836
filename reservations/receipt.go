package reservations

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/imjustneko/Travel-web/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Signer renders reservation receipts whose QR code carries
// reservationID|userID|signature, signed with an HMAC-SHA256 key.
type Signer struct {
	secret []byte
}

func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

func (s *Signer) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Payload returns the signed QR payload for r.
func (s *Signer) Payload(r *models.Reservation) string {
	data := r.ID.Hex() + "|" + r.User.Hex()
	return data + "|" + s.sign(data)
}

// Verify checks a payload produced by Payload and returns the reservation
// and user ids it names.
func (s *Signer) Verify(payload string) (reservationID, userID string, ok bool) {
	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return "", "", false
	}
	want := s.sign(parts[0] + "|" + parts[1])
	if !hmac.Equal([]byte(want), []byte(parts[2])) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// Render builds the PDF receipt of r from its snapshot.
func (s *Signer) Render(r *models.Reservation) ([]byte, error) {
	qrPNG, err := qrcode.Encode(s.Payload(r), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Reservation Confirmation")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Reservation: " + r.ID.Hex(),
		"Status: " + string(r.Status),
		"Item: " + r.ItemDetails.Title,
		"Category: " + string(r.ItemDetails.Category),
		"Price: " + r.ItemDetails.Price,
		"Check-in: " + formatDate(r.CheckIn),
		"Check-out: " + formatDate(r.CheckOut),
		fmt.Sprintf("Guests: %d", r.Guests),
		"Booked: " + r.CreatedAt.Format("02 Jan 2006 15:04 MST"),
	}
	if r.Notes != "" {
		lines = append(lines, "Notes: "+r.Notes)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, l := range lines {
		pdf.Cell(0, 10, tr(l))
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
