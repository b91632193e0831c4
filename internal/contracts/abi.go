package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "owner", "type": "address"}],
    "name": "balanceOf",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "decimals",
    "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "owner", "type": "address"},
      {"internalType": "address", "name": "spender", "type": "address"}
    ],
    "name": "allowance",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "spender", "type": "address"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "approve",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "transfer",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const stakingABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "token", "type": "address"}],
    "name": "getAllPoolsInfo",
    "outputs": [
      {
        "components": [
          {"internalType": "uint256", "name": "poolId", "type": "uint256"},
          {"internalType": "address", "name": "dividendAddress", "type": "address"},
          {"internalType": "uint256", "name": "dividendRatio", "type": "uint256"},
          {"internalType": "address", "name": "stakeToken", "type": "address"},
          {"internalType": "uint256", "name": "apr", "type": "uint256"},
          {"internalType": "uint256", "name": "lockupPeriod", "type": "uint256"},
          {"internalType": "uint256", "name": "maxStakeAmount", "type": "uint256"},
          {"internalType": "uint256", "name": "totalStaked", "type": "uint256"},
          {"internalType": "uint256", "name": "lastRewardTime", "type": "uint256"},
          {"internalType": "uint256", "name": "dividendRate", "type": "uint256"},
          {"internalType": "int256", "name": "moreGet", "type": "int256"}
        ],
        "internalType": "struct StakingPool.Pool[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "user", "type": "address"},
      {"internalType": "address", "name": "token", "type": "address"}
    ],
    "name": "getAllUserStakes",
    "outputs": [
      {
        "components": [
          {"internalType": "uint256", "name": "stakeId", "type": "uint256"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"},
          {"internalType": "uint256", "name": "stakeStartTime", "type": "uint256"},
          {"internalType": "uint256", "name": "lockedAPR", "type": "uint256"},
          {"internalType": "uint256", "name": "poolId", "type": "uint256"},
          {"internalType": "bool", "name": "isWithdrawn", "type": "bool"}
        ],
        "internalType": "struct StakingPool.StakeRecord[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "user", "type": "address"},
      {"internalType": "uint256", "name": "stakeId", "type": "uint256"}
    ],
    "name": "getStakeDividends",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "poolId", "type": "uint256"}],
    "name": "getPoolDividends",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "stake",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "unstake",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "poolId", "type": "uint256"}],
    "name": "claimDividends",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const exchangeABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "fromToken", "type": "address"},
      {"internalType": "address", "name": "toToken", "type": "address"},
      {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"internalType": "uint256", "name": "minAmountOut", "type": "uint256"}
    ],
    "name": "exchange",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

const swapPairABIJSON = `[
  {
    "inputs": [],
    "name": "getReserves",
    "outputs": [
      {"internalType": "uint256", "name": "reserve0", "type": "uint256"},
      {"internalType": "uint256", "name": "reserve1", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"internalType": "bool", "name": "isBuy", "type": "bool"}
    ],
    "name": "getAmountOut",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error

	stakingABI     abi.ABI
	stakingABIOnce sync.Once
	stakingABIErr  error

	exchangeABI     abi.ABI
	exchangeABIOnce sync.Once
	exchangeABIErr  error

	swapPairABI     abi.ABI
	swapPairABIOnce sync.Once
	swapPairABIErr  error
)

// ERC20 returns the parsed ERC20 ABI.
func ERC20() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// Staking returns the parsed staking contract ABI.
func Staking() (abi.ABI, error) {
	stakingABIOnce.Do(func() {
		stakingABI, stakingABIErr = abi.JSON(strings.NewReader(stakingABIJSON))
	})
	return stakingABI, stakingABIErr
}

// Exchange returns the parsed token exchange contract ABI.
func Exchange() (abi.ABI, error) {
	exchangeABIOnce.Do(func() {
		exchangeABI, exchangeABIErr = abi.JSON(strings.NewReader(exchangeABIJSON))
	})
	return exchangeABI, exchangeABIErr
}

// SwapPair returns the parsed swap pair contract ABI.
func SwapPair() (abi.ABI, error) {
	swapPairABIOnce.Do(func() {
		swapPairABI, swapPairABIErr = abi.JSON(strings.NewReader(swapPairABIJSON))
	})
	return swapPairABI, swapPairABIErr
}
