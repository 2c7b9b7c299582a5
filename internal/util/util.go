package util

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func HMACSHA256Hex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACEqual compares a claimed hex signature against the expected one in
// constant time.
func HMACEqual(claimed, expected string) bool {
	return hmac.Equal([]byte(claimed), []byte(expected))
}

// SubscriberHash is the marketing list's member key: the MD5 of the
// lowercased email address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

var currencySymbols = map[string]string{
	"usd": "$",
	"cad": "$",
	"eur": "€",
	"gbp": "£",
}

// FormatAmount renders an amount held in integer minor units, e.g.
// FormatAmount(12800, "usd") == "$128.00". Unknown currencies fall back to
// an ISO-code prefix.
func FormatAmount(cents int64, currency string) string {
	cur := strings.ToLower(strings.TrimSpace(currency))
	if cur == "" {
		cur = "usd"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if sym, ok := currencySymbols[cur]; ok {
		return fmt.Sprintf("%s%s%d.%02d", sign, sym, cents/100, cents%100)
	}
	return fmt.Sprintf("%s%s %d.%02d", sign, strings.ToUpper(cur), cents/100, cents%100)
}
