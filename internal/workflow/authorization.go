package workflow

import (
	"bytes"
	"fmt"
	"image/png"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const (
	minutesPerDay     = 1440
	displayDateLayout = "02/01/2006"
	displayTimeLayout = "15:04"
	DefaultQRSize     = 256
)

// RomeLocation returns Europe/Rome, or UTC if the zone database lacks it.
func RomeLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		return time.UTC
	}
	return loc
}

// AuthorizationDetails is the content of the authorize modal.
type AuthorizationDetails struct {
	TrxID          string    `json:"trxId"`
	TrxCode        string    `json:"trxCode"`
	MagicLink      string    `json:"magicLink"`
	ExpirationDays float64   `json:"expirationDays"`
	ExpiresAt      time.Time `json:"expiresAt"`
	ExpirationDate string    `json:"expirationDate"`
	ExpirationTime string    `json:"expirationTime"`
}

// MagicLink builds the link the customer opens to authorize trxCode.
func MagicLink(domainName, trxCode string) string {
	return fmt.Sprintf("https://%s/authorizationlink/%s", domainName, url.PathEscape(trxCode))
}

// Expiration returns trxDate plus expirationMinutes in loc. Whole days are
// added as calendar days so month and year boundaries roll over.
func Expiration(trxDate time.Time, expirationMinutes int, loc *time.Location) time.Time {
	start := trxDate.In(loc)
	if expirationMinutes%minutesPerDay == 0 {
		return start.AddDate(0, 0, expirationMinutes/minutesPerDay)
	}
	return start.Add(time.Duration(expirationMinutes) * time.Minute)
}

// NewAuthorizationDetails derives the authorize modal content of trx.
func NewAuthorizationDetails(trx domain.MerchantTransaction, domainName string, loc *time.Location) *AuthorizationDetails {
	exp := Expiration(trx.TrxDate, trx.TrxExpirationMinutes, loc)
	return &AuthorizationDetails{
		TrxID:          trx.TrxID,
		TrxCode:        trx.TrxCode,
		MagicLink:      MagicLink(domainName, trx.TrxCode),
		ExpirationDays: float64(trx.TrxExpirationMinutes) / minutesPerDay,
		ExpiresAt:      exp,
		ExpirationDate: exp.Format(displayDateLayout),
		ExpirationTime: exp.Format(displayTimeLayout),
	}
}

// RenderQRCode encodes link as a size x size PNG.
func RenderQRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	code, err := qr.Encode(link, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("scaling qr code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// QRCodeFilename is the download name of the QR code of trxCode.
func QRCodeFilename(trxCode string) string {
	return fmt.Sprintf("qrcode-%s.png", trxCode)
}
