package recurring

import (
	"encoding/json"
	"fmt"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/cron"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// Submission is the shared body of the three item submission messages. The
// carried item must already be signed by every party.
type Submission struct {
	Item cron.Item `json:"item"`
	// Statement speaks for the submitting party's number sets, claiming
	// the state after every one of its committed numbers left available.
	Statement statement.TransactionStatement `json:"statement"`
}

func (s *Submission) validate(kind cron.ItemKind) error {
	var err error
	if verr := s.Item.Validate(); verr != nil {
		err = errors.AppendField(err, "Item", verr)
	}
	if s.Item.Kind != kind {
		err = errors.AppendField(err, "Item", errors.Wrapf(errors.ErrType, "%s item", s.Item.Kind))
	}
	if verr := s.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	if s.Item.Party(s.Statement.Nym) == nil {
		err = errors.AppendField(err, "Statement", errors.Wrap(errors.ErrInput, "statement nym is not a party"))
	}
	return err
}

// body gives the shared handler access to the embedded submission.
func (s *Submission) body() *Submission {
	return s
}

// PartyNyms names every identity committed to the item. The dispatcher
// delivers failure notices to all of them when a submission is refused.
func (s *Submission) PartyNyms() []otx.Address {
	nyms := make([]otx.Address, 0, len(s.Item.Parties))
	for i := range s.Item.Parties {
		nyms = append(nyms, s.Item.Parties[i].Nym)
	}
	return nyms
}

// InvolvedAccounts names the accounts the dispatcher must lock.
func (s *Submission) InvolvedAccounts() []otx.Address {
	var ids []otx.Address
	for i := range s.Item.Parties {
		ids = append(ids, s.Item.Parties[i].Accounts...)
	}
	return ids
}

// InvolvedRecords names the stored cron item slot and the shared number
// sequence the acceptance receipts draw from.
func (s *Submission) InvolvedRecords() []string {
	return []string{
		"numbers",
		fmt.Sprintf("cron/%d", s.Item.OpeningNumber),
	}
}

// OfferMsg submits a market offer to the scheduler.
type OfferMsg struct {
	Submission
}

var _ otx.Msg = (*OfferMsg)(nil)

func (OfferMsg) Path() string {
	return "recurring/offer"
}

func (OfferMsg) Disposition() otx.Disposition {
	return otx.LongLived
}

func (m *OfferMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *OfferMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *OfferMsg) Validate() error {
	return m.validate(cron.MarketOffer)
}

// PlanMsg submits a payment plan to the scheduler.
type PlanMsg struct {
	Submission
}

var _ otx.Msg = (*PlanMsg)(nil)

func (PlanMsg) Path() string {
	return "recurring/plan"
}

func (PlanMsg) Disposition() otx.Disposition {
	return otx.LongLived
}

func (m *PlanMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *PlanMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *PlanMsg) Validate() error {
	return m.validate(cron.PaymentPlan)
}

// ContractMsg submits a smart contract to the scheduler.
type ContractMsg struct {
	Submission
}

var _ otx.Msg = (*ContractMsg)(nil)

func (ContractMsg) Path() string {
	return "recurring/contract"
}

func (ContractMsg) Disposition() otx.Disposition {
	return otx.LongLived
}

func (m *ContractMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *ContractMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *ContractMsg) Validate() error {
	return m.validate(cron.SmartContract)
}

// CancelMsg takes a live recurring item out of the scheduler.
type CancelMsg struct {
	// OpeningNumber identifies the item inside the scheduler.
	OpeningNumber int64 `json:"opening_number"`
	// Statement speaks for the cancelling party.
	Statement statement.TransactionStatement `json:"statement"`
}

var _ otx.Msg = (*CancelMsg)(nil)

func (CancelMsg) Path() string {
	return "recurring/cancel"
}

func (CancelMsg) Disposition() otx.Disposition {
	return otx.OneShot
}

func (m *CancelMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *CancelMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *CancelMsg) Validate() error {
	var err error
	if m.OpeningNumber <= 0 {
		err = errors.AppendField(err, "OpeningNumber", errors.ErrNumber)
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	return err
}

// SettlesUnlisted reports that the cancellation touches the ledgers of
// every party on the stored item, which only the store knows. The
// dispatcher runs it alone.
func (m *CancelMsg) SettlesUnlisted() bool {
	return true
}
