package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// RawPool mirrors the staking contract's pool tuple.
type RawPool struct {
	PoolId          *big.Int
	DividendAddress common.Address
	DividendRatio   *big.Int
	StakeToken      common.Address
	Apr             *big.Int
	LockupPeriod    *big.Int
	MaxStakeAmount  *big.Int
	TotalStaked     *big.Int
	LastRewardTime  *big.Int
	DividendRate    *big.Int
	MoreGet         *big.Int
}

// RawStake mirrors the staking contract's stake record tuple.
type RawStake struct {
	StakeId        *big.Int
	Amount         *big.Int
	StakeStartTime *big.Int
	LockedAPR      *big.Int
	PoolId         *big.Int
	IsWithdrawn    bool
}

// DecodePools converts an unpacked getAllPoolsInfo value into RawPool records.
func DecodePools(value interface{}) ([]RawPool, error) {
	if pools, ok := value.([]RawPool); ok {
		return pools, nil
	}
	out, ok := abi.ConvertType(value, new([]RawPool)).(*[]RawPool)
	if !ok {
		return nil, fmt.Errorf("unexpected pool list type %T", value)
	}
	return *out, nil
}

// DecodeStakes converts an unpacked getAllUserStakes value into RawStake records.
func DecodeStakes(value interface{}) ([]RawStake, error) {
	if stakes, ok := value.([]RawStake); ok {
		return stakes, nil
	}
	out, ok := abi.ConvertType(value, new([]RawStake)).(*[]RawStake)
	if !ok {
		return nil, fmt.Errorf("unexpected stake list type %T", value)
	}
	return *out, nil
}

// AsBigInt normalizes an unpacked numeric value.
func AsBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

// AsUint8 normalizes an unpacked decimals value.
func AsUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
