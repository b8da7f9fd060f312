package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questvars/types"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerCheckHelpers(L)
	registerActionHelpers(L)
}

// curried registers a constructor used as Name "id" { ... }.
func curried(L *lua.LState, name string, add func(id string, tbl *lua.LTable)) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			add(id, L.CheckTable(1))
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "dialogue_id", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Character "id" { name = "..." }
	curried(L, "Character", func(id string, tbl *lua.LTable) {
		coll.characters = append(coll.characters, rawNamed{id: id, table: tbl})
	})

	// Quest "key" { name = "...", objectives = { { key = "...", target = n }, ... } }
	curried(L, "Quest", func(id string, tbl *lua.LTable) {
		coll.quests = append(coll.quests, rawNamed{id: id, table: tbl})
	})

	// Dialogue "id" { start = "node", nodes = { Node "id" { ... }, ... } }
	curried(L, "Dialogue", func(id string, tbl *lua.LTable) {
		coll.dialogues = append(coll.dialogues, rawNamed{id: id, table: tbl})
	})

	// Var("Player/coins", 5) or Var "Player/coins" { value = 5, name = "Coins" }
	L.SetGlobal("Var", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		if L.GetTop() >= 2 {
			coll.vars = append(coll.vars, rawVar{path: path, value: L.Get(2), name: L.OptString(3, "")})
			return 0
		}
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.vars = append(coll.vars, rawVar{
				path:  path,
				value: tbl.RawGetString("value"),
				name:  getString(tbl, "name"),
			})
			return 0
		}))
		return 1
	}))

	// Node "id" { ... } returns the table tagged with its id.
	L.SetGlobal("Node", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString("__node_id", lua.LString(id))
			L.Push(tbl)
			return 1
		}))
		return 1
	}))

	// Choice { text = "...", requires = {...}, effects = {...}, next = "node" }
	L.SetGlobal("Choice", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))

	// QuestVar("FindSword", "seen") addresses a quest-scoped variable.
	L.SetGlobal("QuestVar", L.NewFunction(func(L *lua.LState) int {
		quest := L.CheckString(1)
		key := L.CheckString(2)
		tbl := L.NewTable()
		tbl.RawSetString("scope", lua.LString(types.ScopeQuestScoped))
		tbl.RawSetString("quest", lua.LString(quest))
		tbl.RawSetString("key", lua.LString(key))
		L.Push(tbl)
		return 1
	}))
}

// opTable starts an operation table of the given type.
func opTable(L *lua.LState, t types.OperationType) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(t))
	return tbl
}

// variableArg accepts a key string or a QuestVar table.
func variableArg(L *lua.LState, n int) lua.LValue {
	v := L.Get(n)
	switch v.(type) {
	case lua.LString, *lua.LTable:
		return v
	default:
		L.ArgError(n, "variable name or QuestVar expected")
		return lua.LNil
	}
}

func registerCheckHelpers(L *lua.LState) {
	// CheckQuestStatus("FindSword", "Started")
	L.SetGlobal("CheckQuestStatus", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpCheckQuestStatus)
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		tbl.RawSetString("status", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	// CheckInt("coins", ">", 3)
	L.SetGlobal("CheckInt", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpCheckInt)
		tbl.RawSetString("variable", variableArg(L, 1))
		tbl.RawSetString("comparison", lua.LString(L.CheckString(2)))
		tbl.RawSetString("value", L.CheckNumber(3))
		L.Push(tbl)
		return 1
	}))

	// CheckBool("met_smith", true)
	L.SetGlobal("CheckBool", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpCheckBool)
		tbl.RawSetString("variable", variableArg(L, 1))
		tbl.RawSetString("value", lua.LBool(L.CheckBool(2)))
		L.Push(tbl)
		return 1
	}))
}

func registerActionHelpers(L *lua.LState) {
	// StartQuest("FindSword")
	L.SetGlobal("StartQuest", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpStartQuest)
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// CompleteQuest("FindSword")
	L.SetGlobal("CompleteQuest", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpCompleteQuest)
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))

	// UpdateQuestProgress("FindSword", 1, 2) with a 1-based objective index,
	// matching Lua arrays.
	L.SetGlobal("UpdateQuestProgress", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpUpdateQuestProgress)
		tbl.RawSetString("quest", lua.LString(L.CheckString(1)))
		tbl.RawSetString("objective", L.CheckNumber(2))
		tbl.RawSetString("delta", L.OptNumber(3, 1))
		L.Push(tbl)
		return 1
	}))

	// SetInt("coins", 10)
	L.SetGlobal("SetInt", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpSetInt)
		tbl.RawSetString("variable", variableArg(L, 1))
		tbl.RawSetString("value", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// IncrementInt("coins", 2)
	L.SetGlobal("IncrementInt", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpIncrementInt)
		tbl.RawSetString("variable", variableArg(L, 1))
		tbl.RawSetString("value", L.OptNumber(2, 1))
		L.Push(tbl)
		return 1
	}))

	// SetBool("met_smith", true)
	L.SetGlobal("SetBool", L.NewFunction(func(L *lua.LState) int {
		tbl := opTable(L, types.OpSetBool)
		tbl.RawSetString("variable", variableArg(L, 1))
		tbl.RawSetString("value", lua.LBool(L.CheckBool(2)))
		L.Push(tbl)
		return 1
	}))
}
