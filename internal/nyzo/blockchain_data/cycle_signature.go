package blockchain_data

// CycleSignature is a v1 cycle transaction signature.
type CycleSignature struct {
	Id        []byte
	Signature []byte
}
