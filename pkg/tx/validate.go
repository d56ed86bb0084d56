package tx

// Validate checks the transaction against network rules. Every failure is
// an InvalidTransaction error wrapping one of the rule errors.
func (t Transaction) Validate(cfg NetworkConfig) error {
	if t.Sender.IsEmpty() {
		return invalid("%w", ErrMissingSender)
	}
	if t.Receiver.IsEmpty() {
		return invalid("%w", ErrMissingReceiver)
	}
	if t.Value != nil && t.Value.Sign() < 0 {
		return invalid("%w: %s", ErrNegativeValue, t.Value)
	}
	if cfg.ChainID != "" && t.ChainID != cfg.ChainID {
		return invalid("%w: have %q, network %q", ErrChainIDMismatch, t.ChainID, cfg.ChainID)
	}
	if t.GasPrice < cfg.MinGasPrice {
		return invalid("%w: %d < %d", ErrGasPriceTooLow, t.GasPrice, cfg.MinGasPrice)
	}
	minLimit, err := ComputeGasLimit(cfg, t.Data)
	if err != nil {
		return err
	}
	if t.GasLimit < minLimit {
		return invalid("%w: %d < %d", ErrGasLimitTooLow, t.GasLimit, minLimit)
	}
	if Version < cfg.MinTransactionVersion {
		return invalid("%w: %d < %d", ErrVersionTooLow, Version, cfg.MinTransactionVersion)
	}
	return nil
}
