package system

type ConfigurePeerRequest struct {
	Component string `json:"component" validate:"required,oneof=escrow reputation dispute"`
	Peer      string `json:"peer"      validate:"required,oneof=reputation escrow dispute arbitrator"`
	Address   string `json:"address"   validate:"required,eth_addr"`
}

type ConfigurePeerResponse struct {
	Component string `json:"component"`
	Peer      string `json:"peer"`
	Address   string `json:"address"`
}
