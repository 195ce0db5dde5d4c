package services

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
)

// Bank is a catalog entry. Prefixes are the card BINs the bank issues.
type Bank struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Prefixes []string `json:"prefixes"`
	LogoData string   `json:"logo_data"`
}

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#f0f0f0"/><path d="M100 60c-22.1 0-40 17.9-40 40s17.9 40 40 40 40-17.9 40-40-17.9-40-40-40zm0 65c-13.8 0-25-11.2-25-25s11.2-25 25-25 25 11.2 25 25-11.2 25-25 25z" fill="#999"/><text x="100" y="170" text-anchor="middle" font-family="Arial" font-size="14" fill="#666">BANK</text></svg>`

var iranianBanks = []Bank{
	{Code: "melli", Name: "Bank Melli Iran", Prefixes: []string{"603799"}},
	{Code: "sepah", Name: "Bank Sepah", Prefixes: []string{"589210"}},
	{Code: "tejarat", Name: "Tejarat Bank", Prefixes: []string{"627353", "585983"}},
	{Code: "mellat", Name: "Bank Mellat", Prefixes: []string{"610433", "991975"}},
	{Code: "saderat", Name: "Bank Saderat Iran", Prefixes: []string{"603769"}},
	{Code: "saman", Name: "Saman Bank", Prefixes: []string{"621986"}},
	{Code: "pasargad", Name: "Bank Pasargad", Prefixes: []string{"502229", "639347"}},
	{Code: "parsian", Name: "Parsian Bank", Prefixes: []string{"622106", "639194", "627884"}},
	{Code: "keshavarzi", Name: "Bank Keshavarzi", Prefixes: []string{"603770", "639217"}},
	{Code: "maskan", Name: "Bank Maskan", Prefixes: []string{"628023"}},
	{Code: "refah", Name: "Refah Kargaran Bank", Prefixes: []string{"589463"}},
	{Code: "eghtesad-novin", Name: "EN Bank", Prefixes: []string{"627412"}},
	{Code: "ansar", Name: "Ansar Bank", Prefixes: []string{"627381"}},
	{Code: "sina", Name: "Sina Bank", Prefixes: []string{"639346"}},
	{Code: "shahr", Name: "Shahr Bank", Prefixes: []string{"502806"}},
	{Code: "day", Name: "Day Bank", Prefixes: []string{"502938"}},
	{Code: "post", Name: "Post Bank Iran", Prefixes: []string{"627760"}},
	{Code: "tosee-taavon", Name: "Tose'e Ta'avon Bank", Prefixes: []string{"502908"}},
	{Code: "karafarin", Name: "Karafarin Bank", Prefixes: []string{"627488", "502910"}},
	{Code: "sarmayeh", Name: "Sarmayeh Bank", Prefixes: []string{"639607"}},
	{Code: "ayandeh", Name: "Ayandeh Bank", Prefixes: []string{"636214"}},
	{Code: "gardeshgari", Name: "Tourism Bank", Prefixes: []string{"505416"}},
	{Code: "resalat", Name: "Resalat Bank", Prefixes: []string{"504172"}},
	{Code: "sanat-madan", Name: "Bank of Industry and Mine", Prefixes: []string{"627961"}},
	{Code: "khavarmianeh", Name: "Middle East Bank", Prefixes: []string{"585947"}},
	{Code: "iran-zamin", Name: "Iran Zamin Bank", Prefixes: []string{"505785"}},
	{Code: "markazi", Name: "Central Bank of Iran", Prefixes: []string{"636795"}},
}

type BankService struct {
	logoDir string
}

func NewBankService(logoDir string) *BankService {
	return &BankService{logoDir: logoDir}
}

// Banks returns the catalog with logos inlined as data URIs
func (bs *BankService) Banks() []Bank {
	banks := make([]Bank, len(iranianBanks))
	copy(banks, iranianBanks)

	for i := range banks {
		banks[i].LogoData = bs.LoadLogo(banks[i].Code)
	}
	return banks
}

// Detect finds the issuing bank from a card number's BIN
func (bs *BankService) Detect(cardNumber string) (Bank, bool) {
	cardNumber = stripCardNumber(cardNumber)
	for _, bank := range iranianBanks {
		for _, prefix := range bank.Prefixes {
			if strings.HasPrefix(cardNumber, prefix) {
				return bank, true
			}
		}
	}
	return Bank{}, false
}

func (bs *BankService) LoadLogo(code string) string {
	path := filepath.Join(bs.logoDir, filepath.Base(code)+".svg")
	if data, err := os.ReadFile(path); err == nil {
		return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(data)
	}

	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(placeholderSVG))
}

// PlaceholderLogo is the SVG served for banks without a logo on disk
func PlaceholderLogo() string {
	return placeholderSVG
}
