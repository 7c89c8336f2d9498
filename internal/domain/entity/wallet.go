package entity

// SharePairStatus is the provider-side state of a key-share pair.
type SharePairStatus string

const (
	SharePairStatusPending    SharePairStatus = "pending"
	SharePairStatusIncomplete SharePairStatus = "incomplete"
	SharePairStatusCompleted  SharePairStatus = "completed"
)

// BackupMethod names where a backup share is stored.
type BackupMethod string

const (
	BackupMethodPassword BackupMethod = "password"
	BackupMethodGDrive   BackupMethod = "gdrive"
	BackupMethodICloud   BackupMethod = "icloud"
	BackupMethodPasskey  BackupMethod = "passkey"
	BackupMethodCustom   BackupMethod = "custom"
)

// SharePair is one signing or backup share entry of a wallet.
type SharePair struct {
	ID           string          `json:"id"`
	Status       SharePairStatus `json:"status"`
	BackupMethod BackupMethod    `json:"backupMethod,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
}

// WalletRecord is a wallet of a single curve as known to the provider.
type WalletRecord struct {
	ID                string      `json:"id"`
	Curve             Curve       `json:"curve"`
	SigningSharePairs []SharePair `json:"signingSharePairs"`
	BackupSharePairs  []SharePair `json:"backupSharePairs"`
}

// NamespaceInfo is the address a client holds within one chain namespace.
type NamespaceInfo struct {
	Address string `json:"address"`
	Curve   Curve  `json:"curve"`
}

// ClientMetadata holds per-namespace addresses.
type ClientMetadata struct {
	Namespaces map[ChainFamily]NamespaceInfo `json:"namespaces"`
}

// ClientDescriptor is the provider's view of the current client.
type ClientDescriptor struct {
	ID       string         `json:"id"`
	Wallets  []WalletRecord `json:"wallets"`
	Metadata ClientMetadata `json:"metadata"`
}

// Addresses maps chain families to wallet addresses.
type Addresses map[ChainFamily]string

// AddressesFromDescriptor collects the non-empty namespace addresses.
func AddressesFromDescriptor(d *ClientDescriptor) Addresses {
	out := make(Addresses)
	if d == nil {
		return out
	}
	for family, ns := range d.Metadata.Namespaces {
		if ns.Address != "" {
			out[family] = ns.Address
		}
	}
	return out
}
