package firewall

import (
	nf "github.com/google/nftables"

	apperrors "lampwright/internal/errors"
	"lampwright/internal/logger"
)

// Manager programs the host firewall over netlink.
type Manager struct {
	config *Config
	logger logger.Logger
}

// NewManager creates a firewall manager for the given ruleset.
func NewManager(cfg *Config, log logger.Logger) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Manager{config: cfg, logger: log}
}

// Ensure installs the complete ruleset. The input chain carries a drop
// policy, so the allowlist rules are the only path in. The operation is
// idempotent; an existing table is flushed and reprogrammed.
func (m *Manager) Ensure() error {
	conn := &nf.Conn{}

	table, err := m.ensureTable(conn)
	if err != nil {
		return err
	}

	chain, err := m.ensureInputChain(conn, table)
	if err != nil {
		return err
	}

	conn.FlushChain(chain)
	m.addChainRules(conn, table, chain)

	if err := conn.Flush(); err != nil {
		return newFirewallError("firewall.Ensure", "failed to program ruleset", err, apperrors.Metadata{
			"table": m.config.TableName,
		})
	}

	m.logger.Debug("Programmed %d allowed TCP ports", len(m.config.AllowedTCPPorts))
	return nil
}

// Remove deletes the firewall table entirely, restoring unfiltered input.
func (m *Manager) Remove() error {
	conn := &nf.Conn{}

	tables, err := conn.ListTablesOfFamily(nf.TableFamilyINet)
	if err != nil {
		return newFirewallError("firewall.Remove", "failed to list tables", err, nil)
	}

	for _, t := range tables {
		if t.Name != m.config.TableName {
			continue
		}
		conn.DelTable(t)
		if err := conn.Flush(); err != nil {
			return newFirewallError("firewall.Remove", "failed to delete table", err, apperrors.Metadata{
				"table": m.config.TableName,
			})
		}
		return nil
	}

	return nil
}

func (m *Manager) ensureTable(conn *nf.Conn) (*nf.Table, error) {
	tables, err := conn.ListTablesOfFamily(nf.TableFamilyINet)
	if err != nil {
		return nil, newFirewallError("firewall.ensureTable", "failed to list tables", err, nil)
	}

	for _, t := range tables {
		if t.Name == m.config.TableName {
			return t, nil
		}
	}

	table := conn.AddTable(&nf.Table{
		Name:   m.config.TableName,
		Family: nf.TableFamilyINet,
	})
	if err := conn.Flush(); err != nil {
		return nil, newFirewallError("firewall.ensureTable", "failed to create table", err, apperrors.Metadata{
			"table": m.config.TableName,
		})
	}

	return table, nil
}

func (m *Manager) ensureInputChain(conn *nf.Conn, table *nf.Table) (*nf.Chain, error) {
	chains, err := conn.ListChainsOfTableFamily(table.Family)
	if err != nil {
		return nil, newFirewallError("firewall.ensureInputChain", "failed to enumerate chains", err, apperrors.Metadata{
			"table": table.Name,
		})
	}

	for _, ch := range chains {
		if ch.Table != nil && ch.Table.Name == table.Name && ch.Name == m.config.InputChainName {
			return ch, nil
		}
	}

	policy := nf.ChainPolicyDrop
	chain := conn.AddChain(&nf.Chain{
		Name:     m.config.InputChainName,
		Table:    table,
		Hooknum:  nf.ChainHookInput,
		Type:     nf.ChainTypeFilter,
		Policy:   &policy,
		Priority: nf.ChainPriorityFilter,
	})

	if err := conn.Flush(); err != nil {
		return nil, newFirewallError("firewall.ensureInputChain", "failed to create input chain", err, apperrors.Metadata{
			"table": table.Name,
			"chain": m.config.InputChainName,
		})
	}

	return chain, nil
}

func (m *Manager) addChainRules(conn *nf.Conn, table *nf.Table, chain *nf.Chain) {
	conn.AddRule(&nf.Rule{Table: table, Chain: chain, Exprs: loopbackAcceptExprs()})
	conn.AddRule(&nf.Rule{Table: table, Chain: chain, Exprs: establishedAcceptExprs()})
	conn.AddRule(&nf.Rule{Table: table, Chain: chain, Exprs: invalidDropExprs()})

	for _, port := range m.config.AllowedTCPPorts {
		conn.AddRule(&nf.Rule{Table: table, Chain: chain, Exprs: tcpPortAcceptExprs(port)})
	}
}
