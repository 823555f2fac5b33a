package detector

import (
	"fmt"

	"yield-wallet/internal/domain/entity"
	domainService "yield-wallet/internal/domain/service"

	"go.uber.org/zap"
)

type catalogEntry struct {
	kind       entity.WalletKind
	icon       string
	installURL string
}

var catalog = []catalogEntry{
	{kind: entity.WalletEVMInjected, icon: "/metamaskLogo.png", installURL: "https://metamask.io/download/"},
	{kind: entity.WalletHashPack, icon: "/hashpackLogo.png", installURL: "https://www.hashpack.app/download"},
	{kind: entity.WalletBlade, icon: "/bladewalletLogo.png", installURL: "https://bladewallet.io/"},
	{kind: entity.WalletConnectUniversal, icon: "/walletconnectLogo.png", installURL: "https://walletconnect.network/"},
}

// Detector reports which wallets the environment exposes.
type Detector struct {
	probe  domainService.EnvironmentProbe
	logger *zap.Logger
}

// New creates a detector. A nil probe behaves like a non-browser environment.
func New(probe domainService.EnvironmentProbe, logger *zap.Logger) *Detector {
	return &Detector{probe: probe, logger: logger.Named("WalletDetector")}
}

// Detect lists every known wallet once: installed wallets first in detection order,
// then the rest in catalog order. It never fails; probe panics yield the fallback list.
func (d *Detector) Detect() (wallets []entity.WalletDescriptor) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Wallet probe panicked, returning fallback list", zap.String("panic", fmt.Sprint(r)))
			wallets = fallback()
		}
	}()

	if d.probe == nil || !d.probe.Available() {
		d.logger.Debug("No wallet host available, returning fallback list")
		return fallback()
	}

	installed := make([]entity.WalletDescriptor, 0, len(catalog))
	missing := make([]entity.WalletDescriptor, 0, len(catalog))
	for _, c := range catalog {
		desc := describe(c, d.isInstalled(c.kind))
		if desc.Installed {
			installed = append(installed, desc)
		} else {
			missing = append(missing, desc)
		}
	}
	d.logger.Debug("Detected wallets", zap.Int("installed", len(installed)), zap.Int("missing", len(missing)))
	return append(installed, missing...)
}

// IsInstalled reports whether kind is present in the environment.
func (d *Detector) IsInstalled(kind entity.WalletKind) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	if d.probe == nil || !d.probe.Available() {
		return false
	}
	return d.isInstalled(kind)
}

func (d *Detector) isInstalled(kind entity.WalletKind) bool {
	switch kind {
	case entity.WalletEVMInjected:
		p, ok := d.probe.EVM()
		return ok && p.IsMetaMask()
	case entity.WalletHashPack:
		_, ok := d.probe.HashPack()
		return ok
	case entity.WalletBlade:
		_, ok := d.probe.Blade()
		return ok
	case entity.WalletConnectUniversal:
		_, ok := d.probe.Universal()
		return ok
	default:
		return false
	}
}

// InstallURL returns where the user can get the wallet, "#" for unknown kinds.
func InstallURL(kind entity.WalletKind) string {
	for _, c := range catalog {
		if c.kind == kind {
			return c.installURL
		}
	}
	return "#"
}

func describe(c catalogEntry, installed bool) entity.WalletDescriptor {
	return entity.WalletDescriptor{
		Name:        c.kind.DisplayName(),
		Kind:        c.kind,
		ChainFamily: c.kind.Family(),
		Icon:        c.icon,
		Installed:   installed,
		InstallURL:  c.installURL,
	}
}

func fallback() []entity.WalletDescriptor {
	out := make([]entity.WalletDescriptor, len(catalog))
	for i, c := range catalog {
		out[i] = describe(c, false)
	}
	return out
}
