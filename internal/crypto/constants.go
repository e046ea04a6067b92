package crypto

const (
	HashSize = 32

	// PoseidonChunkSize is the number of payload bytes packed into one field
	// element. 31 bytes always fit below the BN254 scalar modulus.
	PoseidonChunkSize = 31
	// PoseidonMaxInputs is the widest Poseidon instance available.
	PoseidonMaxInputs = 16
	// PoseidonMaxPayload is the longest payload Poseidon.Hash accepts. One
	// input is taken by the length of multi-chunk payloads.
	PoseidonMaxPayload = PoseidonChunkSize * (PoseidonMaxInputs - 1)
)
