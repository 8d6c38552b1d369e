package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// ErrUnknownNetwork indicates the network name has no parameters.
var ErrUnknownNetwork = errors.New("unknown network")

// Network names understood by the wallet backend.
const (
	NetworkMainnet   = "mainnet"
	NetworkTestnet   = "testnet"
	NetworkLocaltest = "localtest"
)

// Network binds a backend network name to its Bitcoin chain parameters.
// It satisfies hdkeychain.NetworkParams so keys carry the right version bytes.
type Network struct {
	Name   string
	Params *chaincfg.Params
}

// HDPrivKeyVersion returns the extended private key version bytes.
func (n Network) HDPrivKeyVersion() [4]byte { return n.Params.HDPrivateKeyID }

// HDPubKeyVersion returns the extended public key version bytes.
func (n Network) HDPubKeyVersion() [4]byte { return n.Params.HDPublicKeyID }

// NetworkByName returns the parameters for a backend network name.
// localtest runs against a regtest node and shares testnet's tprv/tpub versions.
func NetworkByName(name string) (Network, error) {
	switch name {
	case NetworkMainnet:
		return Network{Name: name, Params: &chaincfg.MainNetParams}, nil
	case NetworkTestnet:
		return Network{Name: name, Params: &chaincfg.TestNet3Params}, nil
	case NetworkLocaltest:
		return Network{Name: name, Params: &chaincfg.RegressionNetParams}, nil
	default:
		return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
}
