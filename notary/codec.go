package notary

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/exchange"
	"github.com/secureonelabs/opentxs-sub000/x/funds"
	"github.com/secureonelabs/opentxs-sub000/x/dividend"
	"github.com/secureonelabs/opentxs-sub000/x/process"
	"github.com/secureonelabs/opentxs-sub000/x/recurring"
	"github.com/secureonelabs/opentxs-sub000/x/transfer"
)

// Codec maps message paths to prototypes so a request body can be decoded
// into the right message type.
type Codec struct {
	protos map[string]func() otx.Msg
}

func NewCodec() *Codec {
	return &Codec{protos: make(map[string]func() otx.Msg)}
}

// Register adds one message prototype. Registering the same path twice is
// a programmer error.
func (c *Codec) Register(proto func() otx.Msg) {
	path := proto().Path()
	if _, ok := c.protos[path]; ok {
		panic("duplicate message path: " + path)
	}
	c.protos[path] = proto
}

// Decode unpacks a raw body into the message registered for the path.
func (c *Codec) Decode(path string, body []byte) (otx.Msg, error) {
	proto, ok := c.protos[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMsg, "no message registered for %q", path)
	}
	msg := proto()
	if err := json.Unmarshal(body, msg); err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot decode %q body: %s", path, err)
	}
	return msg, nil
}

// StdCodec knows every message kind of the engine.
func StdCodec() *Codec {
	c := NewCodec()
	c.Register(func() otx.Msg { return &transfer.SendMsg{} })
	c.Register(func() otx.Msg { return &funds.DepositMsg{} })
	c.Register(func() otx.Msg { return &funds.WithdrawMsg{} })
	c.Register(func() otx.Msg { return &dividend.PayMsg{} })
	c.Register(func() otx.Msg { return &exchange.BasketMsg{} })
	c.Register(func() otx.Msg { return &recurring.OfferMsg{} })
	c.Register(func() otx.Msg { return &recurring.PlanMsg{} })
	c.Register(func() otx.Msg { return &recurring.ContractMsg{} })
	c.Register(func() otx.Msg { return &recurring.CancelMsg{} })
	c.Register(func() otx.Msg { return &process.InboxMsg{} })
	c.Register(func() otx.Msg { return &process.MailboxMsg{} })
	return c
}
