package bridge

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const bridgeABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "bytes", "name": "recipient", "type": "bytes"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": true, "internalType": "uint256", "name": "destinationChainId", "type": "uint256"}
    ],
    "name": "TokensLocked",
    "type": "event"
  }
]`

// LockEventName is the watched event on the source bridge contract.
const LockEventName = "TokensLocked"

var (
	bridgeABIOnce sync.Once
	bridgeABI     abi.ABI
	bridgeABIErr  error
)

// BridgeABI returns the parsed bridge contract ABI.
func BridgeABI() (abi.ABI, error) {
	bridgeABIOnce.Do(func() {
		bridgeABI, bridgeABIErr = abi.JSON(strings.NewReader(bridgeABIJSON))
	})
	return bridgeABI, bridgeABIErr
}
