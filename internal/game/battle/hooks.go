package battle

// Hook names a point in battle resolution where effects may react.
type Hook string

// Lifecycle hooks, run with SingleEvent on the effect itself.
const (
	HookStart   Hook = "Start"
	HookRestart Hook = "Restart"
	HookEnd     Hook = "End"
)

// Turn and action hooks.
const (
	HookBeforeTurn         Hook = "BeforeTurn"
	HookBeforeTurnCallback Hook = "BeforeTurnCallback"
	HookResidual           Hook = "Residual"
	HookModifyPriority     Hook = "ModifyPriority"
	HookFractionalPriority Hook = "FractionalPriority"
	HookDisableMove        Hook = "DisableMove"
	HookLockMove           Hook = "LockMove"
	HookOverrideAction     Hook = "OverrideAction"
	HookBeforeMove         Hook = "BeforeMove"
	HookBeforeMoveCallback Hook = "BeforeMoveCallback"
	HookMoveAborted        Hook = "MoveAborted"
	HookDeductPP           Hook = "DeductPP"
	HookAfterMove          Hook = "AfterMove"
	HookUpdate             Hook = "Update"
)

// Move execution hooks.
const (
	HookModifyType             Hook = "ModifyType"
	HookModifyMove             Hook = "ModifyMove"
	HookTryMove                Hook = "TryMove"
	HookTry                    Hook = "Try"
	HookPrepareHit             Hook = "PrepareHit"
	HookTryHit                 Hook = "TryHit"
	HookTryHitField            Hook = "TryHitField"
	HookTryHitSide             Hook = "TryHitSide"
	HookImmunity               Hook = "Immunity"
	HookTryImmunity            Hook = "TryImmunity"
	HookModifyAccuracy         Hook = "ModifyAccuracy"
	HookAccuracy               Hook = "Accuracy"
	HookHit                    Hook = "Hit"
	HookHitField               Hook = "HitField"
	HookHitSide                Hook = "HitSide"
	HookDamagingHit            Hook = "DamagingHit"
	HookModifySecondaries      Hook = "ModifySecondaries"
	HookAfterMoveSecondary     Hook = "AfterMoveSecondary"
	HookAfterMoveSecondarySelf Hook = "AfterMoveSecondarySelf"
	HookMoveFail               Hook = "MoveFail"
)

// Damage hooks.
const (
	HookBasePowerCallback   Hook = "BasePowerCallback"
	HookDamageCallback      Hook = "DamageCallback"
	HookBasePower           Hook = "BasePower"
	HookModifyCritRatio     Hook = "ModifyCritRatio"
	HookCriticalHit         Hook = "CriticalHit"
	HookModifyAtk           Hook = "ModifyAtk"
	HookModifyDef           Hook = "ModifyDef"
	HookModifySpA           Hook = "ModifySpA"
	HookModifySpD           Hook = "ModifySpD"
	HookModifySpe           Hook = "ModifySpe"
	HookModifyBoost         Hook = "ModifyBoost"
	HookEffectiveness       Hook = "Effectiveness"
	HookWeatherModifyDamage Hook = "WeatherModifyDamage"
	HookModifyDamage        Hook = "ModifyDamage"
	HookDamage              Hook = "Damage"
)

// State change hooks.
const (
	HookSetStatus       Hook = "SetStatus"
	HookAfterSetStatus  Hook = "AfterSetStatus"
	HookTryAddVolatile  Hook = "TryAddVolatile"
	HookChangeBoost     Hook = "ChangeBoost"
	HookTryBoost        Hook = "TryBoost"
	HookAfterBoost      Hook = "AfterBoost"
	HookTryHeal         Hook = "TryHeal"
	HookHeal            Hook = "Heal"
	HookPreStart        Hook = "PreStart"
	HookSwitchIn        Hook = "SwitchIn"
	HookSwitchOut       Hook = "SwitchOut"
	HookBeforeSwitchOut Hook = "BeforeSwitchOut"
	HookDragOut         Hook = "DragOut"
	HookBeforeFaint     Hook = "BeforeFaint"
	HookFaint           Hook = "Faint"
	HookWeather         Hook = "Weather"
	HookTakeItem        Hook = "TakeItem"
)

// statHooks maps each battle stat to the hook that modifies it.
var statHooks = map[string]Hook{
	"atk": HookModifyAtk,
	"def": HookModifyDef,
	"spa": HookModifySpA,
	"spd": HookModifySpD,
	"spe": HookModifySpe,
}

// unprefixed hooks are only delivered to the target's own handlers.
func unprefixed(h Hook) bool {
	switch h {
	case HookBeforeTurn, HookUpdate, HookWeather:
		return true
	}
	return false
}
