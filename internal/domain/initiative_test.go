package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
)

func names(list []domain.Initiative) []string {
	out := make([]string, len(list))
	for i, in := range list {
		out[i] = in.InitiativeName
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortInitiatives_ByName(t *testing.T) {
	list := []domain.Initiative{
		{InitiativeName: "zxcvb"},
		{InitiativeName: "asdfgh"},
		{InitiativeName: "qwerty"},
	}

	asc, err := domain.SortInitiatives(list, domain.SortByInitiativeName, domain.SortAsc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := []string{"asdfgh", "qwerty", "zxcvb"}; !equalStrings(names(asc), want) {
		t.Errorf("expected %v, got %v", want, names(asc))
	}

	desc, err := domain.SortInitiatives(list, domain.SortByInitiativeName, domain.SortDesc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := []string{"zxcvb", "qwerty", "asdfgh"}; !equalStrings(names(desc), want) {
		t.Errorf("expected %v, got %v", want, names(desc))
	}

	again, _ := domain.SortInitiatives(asc, domain.SortByInitiativeName, domain.SortAsc)
	if !equalStrings(names(again), names(asc)) {
		t.Errorf("re-sorting must be a no-op, got %v", names(again))
	}

	if names(list)[0] != "zxcvb" {
		t.Error("input slice must not be mutated")
	}
}

func TestSortInitiatives_StableOnTies(t *testing.T) {
	list := []domain.Initiative{
		{InitiativeID: "1", OrganizationName: "B"},
		{InitiativeID: "2", OrganizationName: "A"},
		{InitiativeID: "3", OrganizationName: "B"},
		{InitiativeID: "4", OrganizationName: "A"},
	}

	got, err := domain.SortInitiatives(list, domain.SortByOrganizationName, domain.SortAsc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ids := []string{got[0].InitiativeID, got[1].InitiativeID, got[2].InitiativeID, got[3].InitiativeID}
	if want := []string{"2", "4", "1", "3"}; !equalStrings(ids, want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestSortInitiatives_ByDate(t *testing.T) {
	d := func(s string) domain.Date {
		tm, _ := time.Parse("2006-01-02", s)
		return domain.Date{Time: tm}
	}
	list := []domain.Initiative{
		{InitiativeName: "b", StartDate: d("2024-03-01")},
		{InitiativeName: "a", StartDate: d("2023-12-31")},
		{InitiativeName: "c", StartDate: d("2024-01-15")},
	}
	got, err := domain.SortInitiatives(list, domain.SortByStartDate, domain.SortAsc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := []string{"a", "c", "b"}; !equalStrings(names(got), want) {
		t.Errorf("expected %v, got %v", want, names(got))
	}
}

func TestSortInitiatives_SpendingPeriodRejected(t *testing.T) {
	_, err := domain.SortInitiatives([]domain.Initiative{{}}, domain.SortBySpendingPeriod, domain.SortAsc)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFilterInitiatives_CaseInsensitive(t *testing.T) {
	list := []domain.Initiative{
		{InitiativeName: "Bonus Elettrodomestici"},
		{InitiativeName: "Carta della cultura"},
		{InitiativeName: "bonus trasporti"},
	}
	got := domain.FilterInitiatives(list, "BONUS")
	if want := []string{"Bonus Elettrodomestici", "bonus trasporti"}; !equalStrings(names(got), want) {
		t.Errorf("expected %v, got %v", want, names(got))
	}
	if len(domain.FilterInitiatives(list, "")) != 3 {
		t.Error("empty search must return the full list")
	}
}

func TestVisibleInitiatives(t *testing.T) {
	list := []domain.Initiative{
		{InitiativeID: "1", Status: domain.InitiativePublished},
		{InitiativeID: "2", Status: "DRAFT"},
		{InitiativeID: "3", Status: domain.InitiativeClosed},
		{InitiativeID: "4", Status: "APPROVED"},
	}
	got := domain.VisibleInitiatives(list)
	if len(got) != 2 || got[0].InitiativeID != "1" || got[1].InitiativeID != "3" {
		t.Errorf("unexpected visible initiatives: %+v", got)
	}
}

func TestDate_JSON(t *testing.T) {
	var in domain.Initiative
	if err := json.Unmarshal([]byte(`{"startDate":"2024-05-02","endDate":"2024-06-30T00:00:00Z"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.StartDate.Format("2006-01-02") != "2024-05-02" {
		t.Errorf("unexpected start date %v", in.StartDate)
	}
	out, err := json.Marshal(in.EndDate)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2024-06-30"` {
		t.Errorf("unexpected encoded date %s", out)
	}
}
