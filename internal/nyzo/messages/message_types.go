package messages

const (
	TypeNewBlock          int16 = 9  // a freshly created block, sent to the cycle
	TypeBlockRequest      int16 = 11 // frozen blocks for a height range, optionally with a balance list
	TypeBlockResponse     int16 = 12
	TypeMeshRequest       int16 = 15 // request node information for in-cycle nodes
	TypeMeshResponse      int16 = 16 // a (capped) list of in-cycle nodes
	TypeBootstrapRequest  int16 = 35 // request "starter" information about the frozen edge and the cycle
	TypeBootstrapResponse int16 = 36 // frozen edge height, frozen edge block hash, a list of all in-cycle verifier IDs
)
