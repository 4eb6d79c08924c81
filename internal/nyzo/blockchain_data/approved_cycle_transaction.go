/*
Reduced record of an approved cycle transaction, kept in the balance list to enforce the per-interval cycle
transaction limit.
*/
package blockchain_data

import (
	"io"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/messages/message_content/message_fields"
)

type ApprovedCycleTransaction struct {
	InitiatorIdentifier []byte
	ReceiverIdentifier  []byte
	ApprovalHeight      int64
	Amount              int64
}

func (t *ApprovedCycleTransaction) ToBytes() []byte {
	serialized := append([]byte(nil), t.InitiatorIdentifier...)
	serialized = append(serialized, t.ReceiverIdentifier...)
	serialized = append(serialized, message_fields.SerializeInt64(t.ApprovalHeight)...)
	return append(serialized, message_fields.SerializeInt64(t.Amount)...)
}

func (t *ApprovedCycleTransaction) Read(r io.Reader) error {
	var err error
	if t.InitiatorIdentifier, err = message_fields.ReadNodeId(r); err != nil {
		return err
	}
	if t.ReceiverIdentifier, err = message_fields.ReadNodeId(r); err != nil {
		return err
	}
	if t.ApprovalHeight, err = message_fields.ReadInt64(r); err != nil {
		return err
	}
	t.Amount, err = message_fields.ReadInt64(r)
	return err
}
